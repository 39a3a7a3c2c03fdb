package model

import (
	"time"

	"gorm.io/datatypes"
)

// Appointment types
const (
	AppointmentTypeInfoMeeting  = "INFO_MEETING"
	AppointmentTypeSchoolTour   = "SCHOOL_TOUR"
	AppointmentTypeInterview    = "INTERVIEW"
	AppointmentTypeAssessment   = "ASSESSMENT"
	AppointmentTypeOnlineMeet   = "ONLINE_MEETING"
	AppointmentTypeConsultation = "CONSULTATION"
)

// Appointment statuses
const (
	AppointmentStatusPending     = "PENDING"
	AppointmentStatusConfirmed   = "CONFIRMED"
	AppointmentStatusCancelled   = "CANCELLED"
	AppointmentStatusCompleted   = "COMPLETED"
	AppointmentStatusRescheduled = "RESCHEDULED"
	AppointmentStatusNoShow      = "NO_SHOW"
)

// Cancellation sources
const (
	CanceledByParent = "PARENT"
	CanceledByStaff  = "STAFF"
	CanceledBySchool = "SCHOOL"
	CanceledBySystem = "SYSTEM"
)

// AppointmentSlot appointment_slots (DayOfWeek Monday=1, times "HH:MM")
type AppointmentSlot struct {
	SlotID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	SchoolID            string         `gorm:"type:uuid;not null;index"                       json:"school_id"`
	StaffUserID         *string        `gorm:"type:uuid"                                      json:"staff_user_id,omitempty"`
	DayOfWeek           int            `gorm:"type:smallint;not null"                         json:"day_of_week"`
	StartTime           string         `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime             string         `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Capacity            int            `gorm:"not null;default:1"                             json:"capacity"`
	AppointmentType     string         `gorm:"type:varchar(30);not null"                      json:"appointment_type"`
	AdvanceBookingHours int            `gorm:"not null;default:0"                             json:"advance_booking_hours"`
	CancellationHours   int            `gorm:"not null;default:0"                             json:"cancellation_hours"`
	RequiresApproval    bool           `gorm:"not null;default:false"                         json:"requires_approval"`
	ExcludedDates       datatypes.JSON `gorm:"type:jsonb"                                     json:"excluded_dates,omitempty"` // ["2026-10-29", …]
	IsActive            bool           `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	School    *School `gorm:"foreignKey:SchoolID;references:SchoolID"  json:"school,omitempty"`
	StaffUser *User   `gorm:"foreignKey:StaffUserID;references:UserID" json:"staff_user,omitempty"`
}

func (AppointmentSlot) TableName() string { return "appointment_slots" }

// Appointment appointments
type Appointment struct {
	AppointmentID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_id"`
	AppointmentNumber  string     `gorm:"type:varchar(20);not null;uniqueIndex"          json:"appointment_number"`
	SlotID             *string    `gorm:"type:uuid;index"                                json:"slot_id,omitempty"`
	SchoolID           string     `gorm:"type:uuid;not null;index"                       json:"school_id"`
	ParentUserID       *string    `gorm:"type:uuid;index"                                json:"parent_user_id,omitempty"`
	StaffUserID        *string    `gorm:"type:uuid"                                      json:"staff_user_id,omitempty"`
	AppointmentDate    time.Time  `gorm:"type:date;not null"                             json:"appointment_date"`
	StartTime          string     `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime            string     `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Status             string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	AppointmentType    string     `gorm:"type:varchar(30);not null"                      json:"appointment_type"`
	Notes              string     `gorm:"type:text"                                      json:"notes,omitempty"`
	ParentName         string     `gorm:"type:varchar(100)"                              json:"parent_name,omitempty"`
	ParentEmail        string     `gorm:"type:varchar(255)"                              json:"parent_email,omitempty"`
	ParentPhone        string     `gorm:"type:varchar(30)"                               json:"parent_phone,omitempty"`
	StudentName        string     `gorm:"type:varchar(100)"                              json:"student_name,omitempty"`
	StudentAge         *int       `                                                      json:"student_age,omitempty"`
	StudentGrade       string     `gorm:"type:varchar(30)"                               json:"student_grade,omitempty"`
	RescheduleCount    int        `gorm:"not null;default:0"                             json:"reschedule_count"`
	RescheduledFromID  *string    `gorm:"type:uuid"                                      json:"rescheduled_from_id,omitempty"`
	ConfirmedAt        *time.Time `                                                      json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time `                                                      json:"completed_at,omitempty"`
	CancellationReason string     `gorm:"type:varchar(500)"                              json:"cancellation_reason,omitempty"`
	CanceledByID       *string    `gorm:"type:uuid"                                      json:"canceled_by_id,omitempty"`
	CanceledByType     string     `gorm:"type:varchar(20)"                               json:"canceled_by_type,omitempty"`
	CanceledAt         *time.Time `                                                      json:"canceled_at,omitempty"`
	IsActive           bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	Slot      *AppointmentSlot `gorm:"foreignKey:SlotID;references:SlotID"      json:"slot,omitempty"`
	School    *School          `gorm:"foreignKey:SchoolID;references:SchoolID"  json:"school,omitempty"`
	StaffUser *User            `gorm:"foreignKey:StaffUserID;references:UserID" json:"staff_user,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

// Waitlist statuses
const (
	WaitlistStatusWaiting   = "WAITING"
	WaitlistStatusNotified  = "NOTIFIED"
	WaitlistStatusBooked    = "BOOKED"
	WaitlistStatusCancelled = "CANCELLED"
)

// AppointmentWaitlist appointment_waitlist
type AppointmentWaitlist struct {
	WaitlistID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"waitlist_id"`
	SchoolID           string         `gorm:"type:uuid;not null;index"                       json:"school_id"`
	ParentUserID       *string        `gorm:"type:uuid"                                      json:"parent_user_id,omitempty"`
	ParentName         string         `gorm:"type:varchar(100);not null"                     json:"parent_name"`
	ParentEmail        string         `gorm:"type:varchar(255);not null"                     json:"parent_email"`
	ParentPhone        string         `gorm:"type:varchar(30)"                               json:"parent_phone,omitempty"`
	StudentName        string         `gorm:"type:varchar(100)"                              json:"student_name,omitempty"`
	PreferredTypes     datatypes.JSON `gorm:"type:jsonb"                                     json:"preferred_types,omitempty"`
	PreferredDays      datatypes.JSON `gorm:"type:jsonb"                                     json:"preferred_days,omitempty"`
	PreferredStartTime string         `gorm:"type:varchar(5)"                                json:"preferred_start_time,omitempty"`
	PreferredEndTime   string         `gorm:"type:varchar(5)"                                json:"preferred_end_time,omitempty"`
	EarliestDate       *time.Time     `gorm:"type:date"                                      json:"earliest_date,omitempty"`
	LatestDate         *time.Time     `gorm:"type:date"                                      json:"latest_date,omitempty"`
	Status             string         `gorm:"type:varchar(20);not null;default:'WAITING'"    json:"status"`
	QueuePosition      int            `gorm:"not null"                                       json:"queue_position"`
	AutoAccept         bool           `gorm:"not null;default:false"                         json:"auto_accept"`
	IsActive           bool           `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (AppointmentWaitlist) TableName() string { return "appointment_waitlist" }
