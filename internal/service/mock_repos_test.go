package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
)

// ── Mock UserRepository / AccessRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetActiveByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.IsActive {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockAccessRepo struct {
	grants []model.UserInstitutionAccess
}

func (m *mockAccessRepo) ListActiveByUser(_ context.Context, userID string) ([]model.UserInstitutionAccess, error) {
	var result []model.UserInstitutionAccess
	for _, g := range m.grants {
		if g.UserID == userID && g.IsActive {
			result = append(result, g)
		}
	}
	return result, nil
}

// ── Mock InstitutionRepository ──

type mockInstitutionRepo struct {
	campuses map[string]*model.Campus
	schools  map[string]*model.School
}

func newMockInstitutionRepo() *mockInstitutionRepo {
	m := &mockInstitutionRepo{
		campuses: make(map[string]*model.Campus),
		schools:  make(map[string]*model.School),
	}
	m.campuses["campus-1"] = &model.Campus{CampusID: "campus-1", BrandID: "brand-1", Name: "Merkez", Slug: "merkez", IsSubscribed: true, IsActive: true}
	m.campuses["campus-2"] = &model.Campus{CampusID: "campus-2", BrandID: "brand-2", Name: "Kuzey", Slug: "kuzey", IsActive: true}
	m.schools["school-1"] = &model.School{SchoolID: "school-1", CampusID: "campus-1", Name: "Deniz Koleji", Slug: "deniz-koleji", IsActive: true}
	m.schools["school-2"] = &model.School{SchoolID: "school-2", CampusID: "campus-2", Name: "Kuzey Ilkokulu", Slug: "kuzey-ilkokulu", IsActive: true}
	return m
}

func (m *mockInstitutionRepo) withCampus(s *model.School) *model.School {
	out := *s
	out.Campus = m.campuses[s.CampusID]
	return &out
}

func (m *mockInstitutionRepo) GetActiveSchool(_ context.Context, id string) (*model.School, error) {
	if s, ok := m.schools[id]; ok && s.IsActive {
		return m.withCampus(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstitutionRepo) subscribed(s *model.School) bool {
	c, ok := m.campuses[s.CampusID]
	return ok && s.IsActive && c.IsActive && c.IsSubscribed
}

func (m *mockInstitutionRepo) GetBookableSchool(_ context.Context, id string) (*model.School, error) {
	if s, ok := m.schools[id]; ok && m.subscribed(s) {
		return m.withCampus(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstitutionRepo) GetPublicSchoolBySlug(_ context.Context, slug string) (*model.School, error) {
	for _, s := range m.schools {
		if s.Slug == slug && m.subscribed(s) {
			return m.withCampus(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstitutionRepo) GetActiveCampus(_ context.Context, id string) (*model.Campus, error) {
	if c, ok := m.campuses[id]; ok && c.IsActive {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstitutionRepo) ListCampusIDsByBrands(_ context.Context, brandIDs []string) ([]string, error) {
	var ids []string
	for _, c := range m.campuses {
		if slices.Contains(brandIDs, c.BrandID) {
			ids = append(ids, c.CampusID)
		}
	}
	return ids, nil
}

func (m *mockInstitutionRepo) ListSchoolIDsByCampuses(_ context.Context, campusIDs []string) ([]string, error) {
	var ids []string
	for _, s := range m.schools {
		if slices.Contains(campusIDs, s.CampusID) {
			ids = append(ids, s.SchoolID)
		}
	}
	return ids, nil
}

// ── Mock PropertyRepository ──

type mockPropertyRepo struct {
	props  map[string]*model.InstitutionProperty
	values []*model.InstitutionPropertyValue
}

func newMockPropertyRepo() *mockPropertyRepo {
	return &mockPropertyRepo{props: make(map[string]*model.InstitutionProperty)}
}

func (m *mockPropertyRepo) GetActiveByID(_ context.Context, id string) (*model.InstitutionProperty, error) {
	if p, ok := m.props[id]; ok && p.IsActive {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func sameScope(v *model.InstitutionPropertyValue, campusID, schoolID *string) bool {
	if campusID != nil {
		return v.CampusID != nil && *v.CampusID == *campusID && v.SchoolID == nil
	}
	return v.SchoolID != nil && *v.SchoolID == *schoolID && v.CampusID == nil
}

func (m *mockPropertyRepo) FindValue(_ context.Context, propertyID string, campusID, schoolID *string) (*model.InstitutionPropertyValue, error) {
	for _, v := range m.values {
		if v.PropertyID == propertyID && sameScope(v, campusID, schoolID) {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPropertyRepo) SaveValue(_ context.Context, value *model.InstitutionPropertyValue) error {
	if value.ValueID == "" {
		value.ValueID = fmt.Sprintf("val-%d", len(m.values)+1)
		m.values = append(m.values, value)
	}
	return nil
}

func (m *mockPropertyRepo) ListValues(_ context.Context, campusID, schoolID *string) ([]model.InstitutionPropertyValue, error) {
	var result []model.InstitutionPropertyValue
	for _, v := range m.values {
		if sameScope(v, campusID, schoolID) {
			row := *v
			row.Property = m.props[v.PropertyID]
			result = append(result, row)
		}
	}
	return result, nil
}

// ── Mock SlotRepository ──

type mockSlotRepo struct {
	slots map[string]*model.AppointmentSlot
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.AppointmentSlot)}
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.AppointmentSlot) error {
	if slot.SlotID == "" {
		slot.SlotID = fmt.Sprintf("slot-%d", len(m.slots)+1)
	}
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) GetActiveByID(_ context.Context, id string) (*model.AppointmentSlot, error) {
	if s, ok := m.slots[id]; ok && s.IsActive {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) LockActiveByID(ctx context.Context, id string) (*model.AppointmentSlot, error) {
	return m.GetActiveByID(ctx, id)
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.AppointmentSlot) error {
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) ListBySchool(_ context.Context, schoolID string, activeOnly bool) ([]model.AppointmentSlot, error) {
	var result []model.AppointmentSlot
	for _, s := range m.slots {
		if s.SchoolID != schoolID || (activeOnly && !s.IsActive) {
			continue
		}
		result = append(result, *s)
	}
	slices.SortFunc(result, func(a, b model.AppointmentSlot) int {
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek - b.DayOfWeek
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return result, nil
}

func (m *mockSlotRepo) ExistsOverlapping(_ context.Context, schoolID string, dayOfWeek int, start, end string, staffUserID *string, excludeSlotID string) (bool, error) {
	for _, s := range m.slots {
		if !s.IsActive || s.SchoolID != schoolID || s.DayOfWeek != dayOfWeek || s.SlotID == excludeSlotID {
			continue
		}
		if (s.StaffUserID == nil) != (staffUserID == nil) {
			continue
		}
		if s.StaffUserID != nil && *s.StaffUserID != *staffUserID {
			continue
		}
		if clockBefore(s.StartTime, end) && clockBefore(start, s.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	apts         map[string]*model.Appointment
	slots        *mockSlotRepo
	institutions *mockInstitutionRepo
}

func newMockAppointmentRepo(slots *mockSlotRepo, inst *mockInstitutionRepo) *mockAppointmentRepo {
	return &mockAppointmentRepo{apts: make(map[string]*model.Appointment), slots: slots, institutions: inst}
}

func (m *mockAppointmentRepo) hydrate(a *model.Appointment) *model.Appointment {
	if a.SlotID != nil {
		a.Slot = m.slots.slots[*a.SlotID]
	}
	if s, ok := m.institutions.schools[a.SchoolID]; ok {
		a.School = m.institutions.withCampus(s)
	}
	return a
}

func (m *mockAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	if apt.AppointmentID == "" {
		apt.AppointmentID = fmt.Sprintf("apt-%d", len(m.apts)+1)
	}
	if apt.CreatedAt.IsZero() {
		apt.CreatedAt = time.Now()
	}
	m.apts[apt.AppointmentID] = apt
	return nil
}

func (m *mockAppointmentRepo) GetActiveByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := m.apts[id]; ok && a.IsActive {
		return m.hydrate(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) GetActiveByNumber(_ context.Context, number string) (*model.Appointment, error) {
	for _, a := range m.apts {
		if a.AppointmentNumber == number && a.IsActive {
			return m.hydrate(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, a := range m.apts {
		if a.AppointmentNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	m.apts[apt.AppointmentID] = apt
	return nil
}

func booked(a *model.Appointment) bool {
	return a.IsActive && slices.Contains(repository.BookedStatuses, a.Status)
}

func (m *mockAppointmentRepo) CountBooked(_ context.Context, slotID string, date time.Time) (int64, error) {
	var n int64
	day := date.Format(time.DateOnly)
	for _, a := range m.apts {
		if a.SlotID != nil && *a.SlotID == slotID && a.AppointmentDate.Format(time.DateOnly) == day && booked(a) {
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) CountBookedBySlots(_ context.Context, slotIDs []string, from, to time.Time) ([]repository.SlotDateCount, error) {
	counts := make(map[string]*repository.SlotDateCount)
	lo, hi := from.Format(time.DateOnly), to.Format(time.DateOnly)
	for _, a := range m.apts {
		if a.SlotID == nil || !slices.Contains(slotIDs, *a.SlotID) || !booked(a) {
			continue
		}
		day := a.AppointmentDate.Format(time.DateOnly)
		if day < lo || day > hi {
			continue
		}
		key := *a.SlotID + "|" + day
		if counts[key] == nil {
			counts[key] = &repository.SlotDateCount{SlotID: *a.SlotID, Date: a.AppointmentDate}
		}
		counts[key].Count++
	}
	var rows []repository.SlotDateCount
	for _, c := range counts {
		rows = append(rows, *c)
	}
	return rows, nil
}

func (m *mockAppointmentRepo) inWindow(a *model.Appointment, schoolIDs []string, from, to time.Time) bool {
	if !a.IsActive || (len(schoolIDs) > 0 && !slices.Contains(schoolIDs, a.SchoolID)) {
		return false
	}
	day := a.AppointmentDate.Format(time.DateOnly)
	return day >= from.Format(time.DateOnly) && day <= to.Format(time.DateOnly)
}

func (m *mockAppointmentRepo) Search(_ context.Context, f repository.AppointmentFilter) ([]model.Appointment, int64, error) {
	var result []model.Appointment
	for _, a := range m.apts {
		if !a.IsActive {
			continue
		}
		if len(f.SchoolIDs) > 0 && !slices.Contains(f.SchoolIDs, a.SchoolID) {
			continue
		}
		if f.ParentUserID != "" && (a.ParentUserID == nil || *a.ParentUserID != f.ParentUserID) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, a.AppointmentType) {
			continue
		}
		result = append(result, *m.hydrate(a))
	}
	slices.SortFunc(result, func(a, b model.Appointment) int {
		return strings.Compare(a.AppointmentNumber, b.AppointmentNumber)
	})
	return result, int64(len(result)), nil
}

func (m *mockAppointmentRepo) group(schoolIDs []string, from, to time.Time, key func(*model.Appointment) string) []repository.StatusCount {
	counts := make(map[string]int64)
	for _, a := range m.apts {
		if m.inWindow(a, schoolIDs, from, to) {
			counts[key(a)]++
		}
	}
	var rows []repository.StatusCount
	for k, n := range counts {
		rows = append(rows, repository.StatusCount{Key: k, Count: n})
	}
	slices.SortFunc(rows, func(a, b repository.StatusCount) int { return strings.Compare(a.Key, b.Key) })
	return rows
}

func (m *mockAppointmentRepo) CountByStatus(_ context.Context, schoolIDs []string, from, to time.Time) ([]repository.StatusCount, error) {
	return m.group(schoolIDs, from, to, func(a *model.Appointment) string { return a.Status }), nil
}

func (m *mockAppointmentRepo) CountByType(_ context.Context, schoolIDs []string, from, to time.Time) ([]repository.StatusCount, error) {
	return m.group(schoolIDs, from, to, func(a *model.Appointment) string { return a.AppointmentType }), nil
}

func (m *mockAppointmentRepo) StaffPerformance(_ context.Context, schoolIDs []string, from, to time.Time) ([]repository.StaffPerformanceRow, error) {
	rows := make(map[string]*repository.StaffPerformanceRow)
	for _, a := range m.apts {
		if a.StaffUserID == nil || !m.inWindow(a, schoolIDs, from, to) {
			continue
		}
		r := rows[*a.StaffUserID]
		if r == nil {
			r = &repository.StaffPerformanceRow{StaffUserID: *a.StaffUserID, StaffName: "Staff " + *a.StaffUserID}
			rows[*a.StaffUserID] = r
		}
		r.Total++
		switch a.Status {
		case model.AppointmentStatusCompleted:
			r.Completed++
		case model.AppointmentStatusCancelled:
			r.Cancelled++
		case model.AppointmentStatusNoShow:
			r.NoShow++
		}
	}
	var result []repository.StaffPerformanceRow
	for _, r := range rows {
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockAppointmentRepo) CompletePast(_ context.Context, cutoff time.Time, zone string) (int64, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, a := range m.apts {
		if a.Status != model.AppointmentStatusConfirmed || !a.IsActive {
			continue
		}
		end, err := time.ParseInLocation(time.DateOnly+" 15:04", a.AppointmentDate.Format(time.DateOnly)+" "+a.EndTime, loc)
		if err != nil || !end.Before(cutoff) {
			continue
		}
		a.Status = model.AppointmentStatusCompleted
		a.CompletedAt = &cutoff
		n++
	}
	return n, nil
}

// ── Mock WaitlistRepository ──

type mockWaitlistRepo struct {
	entries []*model.AppointmentWaitlist
}

func (m *mockWaitlistRepo) Create(_ context.Context, entry *model.AppointmentWaitlist) error {
	entry.WaitlistID = fmt.Sprintf("wl-%d", len(m.entries)+1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockWaitlistRepo) ExistsActive(_ context.Context, schoolID, parentEmail string) (bool, error) {
	for _, e := range m.entries {
		if e.SchoolID == schoolID && strings.EqualFold(e.ParentEmail, parentEmail) &&
			e.IsActive && e.Status == model.WaitlistStatusWaiting {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockWaitlistRepo) CountWaiting(_ context.Context, schoolID string) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.SchoolID == schoolID && e.Status == model.WaitlistStatusWaiting {
			n++
		}
	}
	return n, nil
}

func (m *mockWaitlistRepo) ListBySchool(_ context.Context, schoolID string) ([]model.AppointmentWaitlist, error) {
	var result []model.AppointmentWaitlist
	for _, e := range m.entries {
		if e.SchoolID == schoolID {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock pricing repositories ──

type mockPricingRepo struct {
	rows         map[string]*model.SchoolPricing
	institutions *mockInstitutionRepo
	createErr    error
}

func newMockPricingRepo(inst *mockInstitutionRepo) *mockPricingRepo {
	return &mockPricingRepo{rows: make(map[string]*model.SchoolPricing), institutions: inst}
}

func (m *mockPricingRepo) Create(_ context.Context, p *model.SchoolPricing) error {
	if m.createErr != nil {
		return m.createErr
	}
	if p.PricingID == "" {
		p.PricingID = fmt.Sprintf("pricing-%d", len(m.rows)+1)
	}
	m.rows[p.PricingID] = p
	return nil
}

func (m *mockPricingRepo) GetActiveByID(_ context.Context, id string) (*model.SchoolPricing, error) {
	if p, ok := m.rows[id]; ok && p.IsActive {
		if s, ok := m.institutions.schools[p.SchoolID]; ok {
			p.School = m.institutions.withCampus(s)
		}
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPricingRepo) Save(_ context.Context, p *model.SchoolPricing) error {
	m.rows[p.PricingID] = p
	return nil
}

func (m *mockPricingRepo) ExistsOpen(_ context.Context, schoolID, academicYear, gradeLevel string) (bool, error) {
	for _, p := range m.rows {
		if p.SchoolID == schoolID && p.AcademicYear == academicYear && p.GradeLevel == gradeLevel &&
			p.IsActive && slices.Contains(repository.OpenPricingStatuses, p.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPricingRepo) GetCurrent(_ context.Context, schoolID, gradeLevel, academicYear string) (*model.SchoolPricing, error) {
	for _, p := range m.rows {
		if p.SchoolID == schoolID && p.GradeLevel == gradeLevel && p.AcademicYear == academicYear &&
			p.IsActive && p.IsCurrent && p.Status == model.PricingStatusActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPricingRepo) DeactivateOtherCurrent(_ context.Context, keepID, schoolID, gradeLevel, academicYear string) error {
	for _, p := range m.rows {
		if p.PricingID != keepID && p.SchoolID == schoolID && p.GradeLevel == gradeLevel && p.AcademicYear == academicYear &&
			p.IsCurrent && p.Status == model.PricingStatusActive {
			p.IsCurrent = false
			p.Status = model.PricingStatusInactive
		}
	}
	return nil
}

func (m *mockPricingRepo) ListBySchool(_ context.Context, schoolID string) ([]model.SchoolPricing, error) {
	var result []model.SchoolPricing
	for _, p := range m.rows {
		if p.SchoolID == schoolID && p.IsActive {
			result = append(result, *p)
		}
	}
	return result, nil
}

type mockCustomFeeRepo struct {
	fees []*model.CustomFee
}

func (m *mockCustomFeeRepo) Create(_ context.Context, fee *model.CustomFee) error {
	fee.FeeID = fmt.Sprintf("fee-%d", len(m.fees)+1)
	m.fees = append(m.fees, fee)
	return nil
}

func (m *mockCustomFeeRepo) ExistsByName(_ context.Context, pricingID, name string) (bool, error) {
	for _, f := range m.fees {
		if f.PricingID == pricingID && strings.EqualFold(f.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCustomFeeRepo) ListByPricing(_ context.Context, pricingID string) ([]model.CustomFee, error) {
	var result []model.CustomFee
	for _, f := range m.fees {
		if f.PricingID == pricingID && f.Status == model.FeeStatusActive {
			result = append(result, *f)
		}
	}
	return result, nil
}

type mockPriceHistoryRepo struct {
	rows []model.PriceHistory
}

func (m *mockPriceHistoryRepo) CreateBatch(_ context.Context, rows []model.PriceHistory) error {
	for _, r := range rows {
		r.HistoryID = fmt.Sprintf("hist-%d", len(m.rows)+1)
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *mockPriceHistoryRepo) ListByPricing(_ context.Context, pricingID string) ([]model.PriceHistory, error) {
	var result []model.PriceHistory
	for _, r := range m.rows {
		if r.PricingID == pricingID {
			result = append(result, r)
		}
	}
	return result, nil
}

// ── Mock campaign repositories ──

type mockCampaignRepo struct {
	campaigns map[string]*model.Campaign
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{campaigns: make(map[string]*model.Campaign)}
}

func (m *mockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	if c.CampaignID == "" {
		c.CampaignID = fmt.Sprintf("cmp-%d", len(m.campaigns)+1)
	}
	m.campaigns[c.CampaignID] = c
	return nil
}

func (m *mockCampaignRepo) GetActiveByID(_ context.Context, id string) (*model.Campaign, error) {
	if c, ok := m.campaigns[id]; ok && c.IsActive {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampaignRepo) LockActiveByID(ctx context.Context, id string) (*model.Campaign, error) {
	return m.GetActiveByID(ctx, id)
}

func (m *mockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.campaigns[c.CampaignID] = c
	return nil
}

func (m *mockCampaignRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	for _, c := range m.campaigns {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCampaignRepo) ExistsByPromoCode(_ context.Context, code string) (bool, error) {
	_, err := m.GetByPromoCode(context.Background(), code)
	return err == nil, nil
}

func (m *mockCampaignRepo) GetByPromoCode(_ context.Context, code string) (*model.Campaign, error) {
	for _, c := range m.campaigns {
		if c.PromoCode != nil && strings.EqualFold(*c.PromoCode, code) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampaignRepo) IncrementUsage(_ context.Context, id string) (bool, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return false, nil
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return false, nil
	}
	c.UsageCount++
	return true, nil
}

type mockCampaignSchoolRepo struct {
	links        []*model.CampaignSchool
	institutions *mockInstitutionRepo
}

func (m *mockCampaignSchoolRepo) Create(_ context.Context, link *model.CampaignSchool) error {
	link.CampaignSchoolID = fmt.Sprintf("link-%d", len(m.links)+1)
	m.links = append(m.links, link)
	return nil
}

func (m *mockCampaignSchoolRepo) GetLink(_ context.Context, campaignID, schoolID string) (*model.CampaignSchool, error) {
	for i := len(m.links) - 1; i >= 0; i-- {
		l := m.links[i]
		if l.CampaignID == campaignID && l.SchoolID == schoolID && l.Status != model.CampaignSchoolStatusRemoved {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampaignSchoolRepo) Save(_ context.Context, link *model.CampaignSchool) error {
	return nil
}

func (m *mockCampaignSchoolRepo) ListByCampaign(_ context.Context, campaignID string) ([]model.CampaignSchool, error) {
	var result []model.CampaignSchool
	for _, l := range m.links {
		if l.CampaignID == campaignID && l.Status != model.CampaignSchoolStatusRemoved {
			row := *l
			if s, ok := m.institutions.schools[l.SchoolID]; ok {
				row.School = s
			}
			result = append(result, row)
		}
	}
	return result, nil
}

type mockCampaignUsageRepo struct {
	usages    []*model.CampaignUsage
	campaigns *mockCampaignRepo
}

func (m *mockCampaignUsageRepo) Create(_ context.Context, u *model.CampaignUsage) error {
	u.UsageID = fmt.Sprintf("usage-%d", len(m.usages)+1)
	m.usages = append(m.usages, u)
	return nil
}

func (m *mockCampaignUsageRepo) GetByID(_ context.Context, id string) (*model.CampaignUsage, error) {
	for _, u := range m.usages {
		if u.UsageID == id {
			u.Campaign = m.campaigns.campaigns[u.CampaignID]
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampaignUsageRepo) Save(_ context.Context, u *model.CampaignUsage) error {
	return nil
}

func (m *mockCampaignUsageRepo) count(match func(*model.CampaignUsage) bool) int64 {
	var n int64
	for _, u := range m.usages {
		if match(u) {
			n++
		}
	}
	return n
}

func (m *mockCampaignUsageRepo) CountByUser(_ context.Context, campaignID, userID string) (int64, error) {
	return m.count(func(u *model.CampaignUsage) bool {
		return u.CampaignID == campaignID && u.UserID == userID && u.Status != model.UsageStatusCancelled
	}), nil
}

func (m *mockCampaignUsageRepo) CountBySchool(_ context.Context, campaignID, schoolID string) (int64, error) {
	return m.count(func(u *model.CampaignUsage) bool {
		return u.CampaignID == campaignID && u.SchoolID == schoolID && u.Status != model.UsageStatusCancelled
	}), nil
}

func (m *mockCampaignUsageRepo) CountOpenBySchool(_ context.Context, campaignID, schoolID string) (int64, error) {
	return m.count(func(u *model.CampaignUsage) bool {
		return u.CampaignID == campaignID && u.SchoolID == schoolID && slices.Contains(repository.OpenUsageStatuses, u.Status)
	}), nil
}

func (m *mockCampaignUsageRepo) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, u := range m.usages {
		if u.Status == model.UsageStatusPending && u.ValidationExpiresAt.Before(now) {
			u.Status = model.UsageStatusCancelled
			u.CancelledAt = &now
			n++
		}
	}
	return n, nil
}

// ── Mock PostRepository ──

type mockPostRepo struct {
	posts    map[string]*model.Post
	likes    []*model.PostLike
	comments map[string]*model.PostComment
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post), comments: make(map[string]*model.PostComment)}
}

func (m *mockPostRepo) Create(_ context.Context, p *model.Post) error {
	if p.PostID == "" {
		p.PostID = fmt.Sprintf("post-%d", len(m.posts)+1)
	}
	m.posts[p.PostID] = p
	return nil
}

func (m *mockPostRepo) GetActiveByID(_ context.Context, id string) (*model.Post, error) {
	if p, ok := m.posts[id]; ok && p.IsActive {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPostRepo) Save(_ context.Context, p *model.Post) error {
	m.posts[p.PostID] = p
	return nil
}

func (m *mockPostRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPostRepo) IncrementViewCount(_ context.Context, postID string) error {
	m.posts[postID].ViewCount++
	return nil
}

func (m *mockPostRepo) AddLikeCount(_ context.Context, postID string, delta int) error {
	p := m.posts[postID]
	p.LikeCount = max(p.LikeCount+int64(delta), 0)
	return nil
}

func (m *mockPostRepo) AddCommentCount(_ context.Context, postID string, delta int) error {
	p := m.posts[postID]
	p.CommentCount = max(p.CommentCount+int64(delta), 0)
	return nil
}

func (m *mockPostRepo) GetLike(_ context.Context, postID, userID string) (*model.PostLike, error) {
	for _, l := range m.likes {
		if l.PostID == postID && l.UserID == userID {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPostRepo) CreateLike(_ context.Context, like *model.PostLike) error {
	like.LikeID = fmt.Sprintf("like-%d", len(m.likes)+1)
	m.likes = append(m.likes, like)
	return nil
}

func (m *mockPostRepo) UpdateLikeReaction(_ context.Context, likeID, reaction string) error {
	for _, l := range m.likes {
		if l.LikeID == likeID {
			l.ReactionType = reaction
		}
	}
	return nil
}

func (m *mockPostRepo) DeleteLike(_ context.Context, likeID string) error {
	m.likes = slices.DeleteFunc(m.likes, func(l *model.PostLike) bool { return l.LikeID == likeID })
	return nil
}

func (m *mockPostRepo) GetComment(_ context.Context, id string) (*model.PostComment, error) {
	if c, ok := m.comments[id]; ok && c.IsActive {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPostRepo) CreateComment(_ context.Context, c *model.PostComment) error {
	c.CommentID = fmt.Sprintf("comment-%d", len(m.comments)+1)
	m.comments[c.CommentID] = c
	return nil
}

// ── aggregate ──

type mockRepos struct {
	users          *mockUserRepo
	access         *mockAccessRepo
	institutions   *mockInstitutionRepo
	properties     *mockPropertyRepo
	slots          *mockSlotRepo
	appointments   *mockAppointmentRepo
	waitlist       *mockWaitlistRepo
	pricing        *mockPricingRepo
	customFees     *mockCustomFeeRepo
	priceHistory   *mockPriceHistoryRepo
	campaigns      *mockCampaignRepo
	campaignSchool *mockCampaignSchoolRepo
	usages         *mockCampaignUsageRepo
	posts          *mockPostRepo
}

// newMockRepository builds a connection-less aggregate; Transaction runs fn
// directly on it
func newMockRepository() (*repository.Repository, *mockRepos) {
	inst := newMockInstitutionRepo()
	slots := newMockSlotRepo()
	campaigns := newMockCampaignRepo()
	m := &mockRepos{
		users:          newMockUserRepo(),
		access:         &mockAccessRepo{},
		institutions:   inst,
		properties:     newMockPropertyRepo(),
		slots:          slots,
		appointments:   newMockAppointmentRepo(slots, inst),
		waitlist:       &mockWaitlistRepo{},
		pricing:        newMockPricingRepo(inst),
		customFees:     &mockCustomFeeRepo{},
		priceHistory:   &mockPriceHistoryRepo{},
		campaigns:      campaigns,
		campaignSchool: &mockCampaignSchoolRepo{institutions: inst},
		usages:         &mockCampaignUsageRepo{campaigns: campaigns},
		posts:          newMockPostRepo(),
	}
	repo := &repository.Repository{
		User:           m.users,
		Access:         m.access,
		Institution:    m.institutions,
		Property:       m.properties,
		Slot:           m.slots,
		Appointment:    m.appointments,
		Waitlist:       m.waitlist,
		Pricing:        m.pricing,
		CustomFee:      m.customFees,
		PriceHistory:   m.priceHistory,
		Campaign:       m.campaigns,
		CampaignSchool: m.campaignSchool,
		CampaignUsage:  m.usages,
		Post:           m.posts,
	}
	return repo, m
}

// ── fixtures ──

// fixedNow Monday 2026-03-02 09:00 UTC
var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func clockBefore(a, b string) bool {
	ta, _ := time.Parse(dto.TimeLayout, a)
	tb, _ := time.Parse(dto.TimeLayout, b)
	return ta.Before(tb)
}

var (
	systemActor = &access.Actor{UserID: "sys-1", Role: "admin", RoleLevel: model.RoleLevelSystem}
	brandActor  = &access.Actor{UserID: "brand-user", RoleLevel: model.RoleLevelBrand, BrandIDs: []string{"brand-1"}, CampusIDs: []string{"campus-1"}, SchoolIDs: []string{"school-1"}}
	campusActor = &access.Actor{UserID: "campus-user", RoleLevel: model.RoleLevelCampus, CampusIDs: []string{"campus-1"}, SchoolIDs: []string{"school-1"}}
	schoolActor = &access.Actor{UserID: "school-user", RoleLevel: model.RoleLevelSchool, SchoolIDs: []string{"school-1"}}
	otherActor  = &access.Actor{UserID: "other-user", RoleLevel: model.RoleLevelSchool, SchoolIDs: []string{"school-2"}}
	parentActor = &access.Actor{UserID: "parent-1", RoleLevel: model.RoleLevelParent}
)
