package dto

// ── Slot ──

// CreateSlotRequest create a recurring availability slot
type CreateSlotRequest struct {
	SchoolID            string   `json:"school_id"             binding:"required,uuid"`
	StaffUserID         *string  `json:"staff_user_id"         binding:"omitempty,uuid"`
	DayOfWeek           int      `json:"day_of_week"           binding:"required,min=1,max=7"` // Monday=1
	StartTime           string   `json:"start_time"            binding:"required,datetime=15:04"`
	EndTime             string   `json:"end_time"              binding:"required,datetime=15:04"`
	Capacity            int      `json:"capacity"              binding:"omitempty,min=1"`
	AppointmentType     string   `json:"appointment_type"      binding:"required"`
	AdvanceBookingHours int      `json:"advance_booking_hours" binding:"omitempty,min=0"`
	CancellationHours   int      `json:"cancellation_hours"    binding:"omitempty,min=0"`
	RequiresApproval    bool     `json:"requires_approval"`
	ExcludedDates       []string `json:"excluded_dates"        binding:"omitempty,dive,datetime=2006-01-02"`
}

// UpdateSlotRequest partial slot update
type UpdateSlotRequest struct {
	StaffUserID         *string   `json:"staff_user_id"         binding:"omitempty,uuid"`
	DayOfWeek           *int      `json:"day_of_week"           binding:"omitempty,min=1,max=7"`
	StartTime           *string   `json:"start_time"            binding:"omitempty,datetime=15:04"`
	EndTime             *string   `json:"end_time"              binding:"omitempty,datetime=15:04"`
	Capacity            *int      `json:"capacity"              binding:"omitempty,min=1"`
	AppointmentType     *string   `json:"appointment_type"`
	AdvanceBookingHours *int      `json:"advance_booking_hours" binding:"omitempty,min=0"`
	CancellationHours   *int      `json:"cancellation_hours"    binding:"omitempty,min=0"`
	RequiresApproval    *bool     `json:"requires_approval"`
	ExcludedDates       *[]string `json:"excluded_dates"`
}

// SlotResponse slot view
type SlotResponse struct {
	ID                  string   `json:"id"`
	SchoolID            string   `json:"school_id"`
	StaffUserID         *string  `json:"staff_user_id,omitempty"`
	DayOfWeek           int      `json:"day_of_week"`
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	Capacity            int      `json:"capacity"`
	AppointmentType     string   `json:"appointment_type"`
	AdvanceBookingHours int      `json:"advance_booking_hours"`
	CancellationHours   int      `json:"cancellation_hours"`
	RequiresApproval    bool     `json:"requires_approval"`
	ExcludedDates       []string `json:"excluded_dates,omitempty"`
	IsActive            bool     `json:"is_active"`
	Version             int      `json:"version"`
}

// ── Appointment ──

// CreateAppointmentRequest book an appointment (authenticated or public)
type CreateAppointmentRequest struct {
	SchoolID        string  `json:"school_id"        binding:"required,uuid"`
	SlotID          *string `json:"slot_id"          binding:"omitempty,uuid"`
	StaffUserID     *string `json:"staff_user_id"    binding:"omitempty,uuid"`
	AppointmentDate string  `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	StartTime       string  `json:"start_time"       binding:"omitempty,datetime=15:04"` // defaults to the slot's window
	EndTime         string  `json:"end_time"         binding:"omitempty,datetime=15:04"`
	AppointmentType string  `json:"appointment_type" binding:"required"`
	Notes           string  `json:"notes"            binding:"omitempty,max=2000"`
	ParentName      string  `json:"parent_name"      binding:"omitempty,max=100"`
	ParentEmail     string  `json:"parent_email"     binding:"omitempty,email"`
	ParentPhone     string  `json:"parent_phone"     binding:"omitempty,max=30"`
	StudentName     string  `json:"student_name"     binding:"omitempty,max=100"`
	StudentAge      *int    `json:"student_age"      binding:"omitempty,min=0,max=25"`
	StudentGrade    string  `json:"student_grade"    binding:"omitempty,max=30"`
}

// CancelAppointmentRequest cancel by id
type CancelAppointmentRequest struct {
	AppointmentID  string `json:"-"`
	Reason         string `json:"reason"           binding:"omitempty,max=500"`
	CanceledByType string `json:"canceled_by_type" binding:"omitempty,oneof=PARENT STAFF SCHOOL SYSTEM"`
}

// PublicCancelRequest cancel by appointment number without authentication
type PublicCancelRequest struct {
	AppointmentNumber string `json:"-"`
	Reason            string `json:"reason" binding:"omitempty,max=500"`
}

// RescheduleAppointmentRequest move an appointment to a new date/time
type RescheduleAppointmentRequest struct {
	AppointmentID string  `json:"-"`
	NewSlotID     *string `json:"new_slot_id"    binding:"omitempty,uuid"`
	NewDate       string  `json:"new_date"       binding:"required,datetime=2006-01-02"`
	NewStartTime  string  `json:"new_start_time" binding:"omitempty,datetime=15:04"`
	NewEndTime    string  `json:"new_end_time"   binding:"omitempty,datetime=15:04"`
	Reason        string  `json:"reason"         binding:"omitempty,max=500"`
}

// BulkAppointmentRequest apply one operation to many appointments
type BulkAppointmentRequest struct {
	AppointmentIDs     []string `json:"appointment_ids"     binding:"required,min=1,max=500"`
	Operation          string   `json:"operation"           binding:"required"`
	Reason             string   `json:"reason"              binding:"omitempty,max=500"`
	NotifyParticipants bool     `json:"notify_participants"`
}

// BulkAppointmentResult aggregate of a bulk operation
type BulkAppointmentResult struct {
	TotalRequested    int           `json:"total_requested"`
	SuccessCount      int           `json:"success_count"`
	FailureCount      int           `json:"failure_count"`
	Success           bool          `json:"success"`
	SucceededIDs      []string      `json:"succeeded_ids"`
	Errors            []ItemMessage `json:"errors"`
	NotificationsSent *int          `json:"notifications_sent,omitempty"`
}

// AppointmentSearchRequest search filters
type AppointmentSearchRequest struct {
	PageRequest
	SchoolIDs   []string `form:"school_ids"       json:"school_ids"`
	StaffUserID string   `form:"staff_user_id"    json:"staff_user_id"    binding:"omitempty,uuid"`
	Statuses    []string `form:"statuses"         json:"statuses"`
	Types       []string `form:"types"            json:"types"`
	DateFrom    string   `form:"date_from"        json:"date_from"        binding:"omitempty,datetime=2006-01-02"`
	DateTo      string   `form:"date_to"          json:"date_to"          binding:"omitempty,datetime=2006-01-02"`
	Query       string   `form:"q"                json:"q"                binding:"omitempty,max=100"`
}

// AppointmentResponse appointment view
type AppointmentResponse struct {
	ID                 string  `json:"id"`
	AppointmentNumber  string  `json:"appointment_number"`
	SlotID             *string `json:"slot_id,omitempty"`
	SchoolID           string  `json:"school_id"`
	SchoolName         string  `json:"school_name,omitempty"`
	ParentUserID       *string `json:"parent_user_id,omitempty"`
	StaffUserID        *string `json:"staff_user_id,omitempty"`
	AppointmentDate    string  `json:"appointment_date"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Status             string  `json:"status"`
	AppointmentType    string  `json:"appointment_type"`
	Notes              string  `json:"notes,omitempty"`
	ParentName         string  `json:"parent_name,omitempty"`
	ParentEmail        string  `json:"parent_email,omitempty"`
	ParentPhone        string  `json:"parent_phone,omitempty"`
	StudentName        string  `json:"student_name,omitempty"`
	StudentAge         *int    `json:"student_age,omitempty"`
	StudentGrade       string  `json:"student_grade,omitempty"`
	RescheduleCount    int     `json:"reschedule_count"`
	RescheduledFromID  *string `json:"rescheduled_from_id,omitempty"`
	ConfirmedAt        string  `json:"confirmed_at,omitempty"`
	CompletedAt        string  `json:"completed_at,omitempty"`
	CancellationReason string  `json:"cancellation_reason,omitempty"`
	CanceledByID       *string `json:"canceled_by_id,omitempty"`
	CanceledByType     string  `json:"canceled_by_type,omitempty"`
	CanceledAt         string  `json:"canceled_at,omitempty"`
	CanCancel          bool    `json:"can_cancel"`
	CanReschedule      bool    `json:"can_reschedule"`
}

// ── Availability ──

// AvailabilityRequest date range query; AppointmentType narrows the slots considered
type AvailabilityRequest struct {
	SchoolID        string `form:"-"`
	AppointmentType string `form:"appointment_type"`
	StartDate       string `form:"start_date"       binding:"required,datetime=2006-01-02"`
	EndDate         string `form:"end_date"         binding:"required,datetime=2006-01-02"`
}

// SlotAvailability one slot on one day
type SlotAvailability struct {
	SlotID          string  `json:"slot_id"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	AppointmentType string  `json:"appointment_type"`
	StaffUserID     *string `json:"staff_user_id,omitempty"`
	Capacity        int     `json:"capacity"`
	Booked          int     `json:"booked"`
	Available       int     `json:"available"`
}

// DayAvailability all slots of one calendar day
type DayAvailability struct {
	Date           string             `json:"date"`
	DayOfWeek      int                `json:"day_of_week"`
	TotalSlots     int                `json:"total_slots"`
	BookedSlots    int                `json:"booked_slots"`
	AvailableSlots int                `json:"available_slots"`
	Slots          []SlotAvailability `json:"slots"`
}

// ── Statistics / reports ──

// StatisticsRequest reporting window; empty SchoolID means every accessible school
type StatisticsRequest struct {
	SchoolID   string `form:"school_id"   json:"school_id"   binding:"omitempty,uuid"`
	DateFrom   string `form:"date_from"   json:"date_from"   binding:"required,datetime=2006-01-02"`
	DateTo     string `form:"date_to"     json:"date_to"     binding:"required,datetime=2006-01-02"`
	ReportType string `form:"report_type" json:"report_type"`
}

// AppointmentStatistics aggregate counts
type AppointmentStatistics struct {
	Total            int64            `json:"total"`
	Pending          int64            `json:"pending"`
	Confirmed        int64            `json:"confirmed"`
	Completed        int64            `json:"completed"`
	Cancelled        int64            `json:"cancelled"`
	Rescheduled      int64            `json:"rescheduled"`
	NoShow           int64            `json:"no_show"`
	ByType           map[string]int64 `json:"by_type"`
	CompletionRate   float64          `json:"completion_rate"`
	CancellationRate float64          `json:"cancellation_rate"`
	NoShowRate       float64          `json:"no_show_rate"`
}

// StaffPerformance per-staff figures
type StaffPerformance struct {
	StaffUserID    string  `json:"staff_user_id"`
	StaffName      string  `json:"staff_name"`
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Cancelled      int64   `json:"cancelled"`
	NoShow         int64   `json:"no_show"`
	CompletionRate float64 `json:"completion_rate"`
}

// AppointmentReport statistics plus narrative
type AppointmentReport struct {
	ReportType       string                 `json:"report_type"`
	GeneratedAt      string                 `json:"generated_at"`
	DateFrom         string                 `json:"date_from"`
	DateTo           string                 `json:"date_to"`
	Statistics       *AppointmentStatistics `json:"statistics,omitempty"`
	StaffPerformance []StaffPerformance     `json:"staff_performance,omitempty"`
	Insights         []string               `json:"insights"`
	Recommendations  []string               `json:"recommendations"`
}

// ── Waitlist ──

// WaitlistRequest join a school's waitlist
type WaitlistRequest struct {
	SchoolID           string   `json:"school_id"            binding:"required,uuid"`
	ParentName         string   `json:"parent_name"          binding:"required,max=100"`
	ParentEmail        string   `json:"parent_email"         binding:"required,email"`
	ParentPhone        string   `json:"parent_phone"         binding:"omitempty,max=30"`
	StudentName        string   `json:"student_name"         binding:"omitempty,max=100"`
	PreferredTypes     []string `json:"preferred_types"`
	PreferredDays      []int    `json:"preferred_days"       binding:"omitempty,dive,min=1,max=7"`
	PreferredStartTime string   `json:"preferred_start_time" binding:"omitempty,datetime=15:04"`
	PreferredEndTime   string   `json:"preferred_end_time"   binding:"omitempty,datetime=15:04"`
	EarliestDate       string   `json:"earliest_date"        binding:"omitempty,datetime=2006-01-02"`
	LatestDate         string   `json:"latest_date"          binding:"omitempty,datetime=2006-01-02"`
	AutoAccept         bool     `json:"auto_accept"`
}

// WaitlistResponse waitlist entry view
type WaitlistResponse struct {
	ID            string `json:"id"`
	SchoolID      string `json:"school_id"`
	ParentName    string `json:"parent_name"`
	ParentEmail   string `json:"parent_email"`
	StudentName   string `json:"student_name,omitempty"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	AutoAccept    bool   `json:"auto_accept"`
	CreatedAt     string `json:"created_at"`
}
