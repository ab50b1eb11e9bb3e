package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/salesnav/internal/middleware"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/security"
)

// RecordHandler はリード・顧客・イベント・紹介のHTTPハンドラー。
// 自由記述のテキストは保存前にサニタイズする。
type RecordHandler struct {
	service   SalesService
	sanitizer security.TextSanitizer
	loc       *time.Location
}

// NewRecordHandler はRecordHandlerを生成する。
// locは日付のみの入力を解釈するタイムゾーン。
func NewRecordHandler(service SalesService, sanitizer security.TextSanitizer, loc *time.Location) *RecordHandler {
	if sanitizer == nil {
		sanitizer = security.NewTextSanitizer()
	}
	if loc == nil {
		loc = time.Local
	}
	return &RecordHandler{service: service, sanitizer: sanitizer, loc: loc}
}

// --- リード ---

type leadRequest struct {
	BusinessName        string `json:"businessName"`
	City                string `json:"city"`
	Address             string `json:"address"`
	Phone               string `json:"phone"`
	StoppedBy           bool   `json:"stoppedBy"`
	FollowedUp          bool   `json:"followedUp"`
	ContactedLeadership bool   `json:"contactedLeadership"`
	AppointmentSet      bool   `json:"appointmentSet"`
	AppointmentDateTime string `json:"appointmentDateTime"`
	Converted           bool   `json:"converted"`
	DecisionMaker       string `json:"decisionMaker"`
	BestTimeToContact   string `json:"bestTimeToContact"`
	CompetitorInfo      string `json:"competitorInfo"`
	MarketingStrategy   string `json:"marketingStrategy"`
	ExtraDetails        string `json:"extraDetails"`
	WeekNumber          string `json:"weekNumber"`
}

func (h *RecordHandler) toLead(req leadRequest) (model.Lead, error) {
	s := h.sanitizer.Sanitize
	lead := model.Lead{
		BusinessName:        s(req.BusinessName),
		City:                s(req.City),
		Address:             s(req.Address),
		Phone:               s(req.Phone),
		StoppedBy:           req.StoppedBy,
		FollowedUp:          req.FollowedUp,
		ContactedLeadership: req.ContactedLeadership,
		AppointmentSet:      req.AppointmentSet,
		Converted:           req.Converted,
		DecisionMaker:       s(req.DecisionMaker),
		BestTimeToContact:   s(req.BestTimeToContact),
		CompetitorInfo:      s(req.CompetitorInfo),
		MarketingStrategy:   s(req.MarketingStrategy),
		ExtraDetails:        s(req.ExtraDetails),
		WeekNumber:          s(req.WeekNumber),
	}
	if req.AppointmentDateTime != "" {
		t, err := ParseDateTime(req.AppointmentDateTime, h.loc)
		if err != nil {
			return model.Lead{}, err
		}
		lead.AppointmentDateTime = &t
	}
	return lead, nil
}

// ListLeads はリード一覧を返す。
// GET /api/leads
func (h *RecordHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Leads)
}

// CreateLead はリードを追加する。
// POST /api/leads
func (h *RecordHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	lead, err := h.toLead(req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	created, _, err := h.service.AddLead(r.Context(), lead)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateLead はリードのフォローアップ済み・成約フラグを更新する。
// PATCH /api/leads/{id}
func (h *RecordHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var patch model.LeadPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeInvalidBody(w)
		return
	}
	if patch.IsEmpty() {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("at least one of followedUp or converted is required"))
		return
	}

	updated, _, err := h.service.UpdateLead(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- 顧客 ---

type clientRequest struct {
	CompanyName      string  `json:"companyName"`
	PackageValue     float64 `json:"packageValue"`
	CompanyType      string  `json:"companyType"`
	StartDate        string  `json:"startDate"`
	AdsSpendBudget   float64 `json:"adsSpendBudget"`
	VideosPerMonth   int     `json:"videosPerMonth"`
	RecordingPerson  string  `json:"recordingPerson"`
	NeedVideographer bool    `json:"needVideographer"`
	ExtraDetails     string  `json:"extraDetails"`
}

// ListClients は顧客一覧を返す。
// GET /api/clients
func (h *RecordHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Clients)
}

// CreateClient は顧客を追加する。
// POST /api/clients
func (h *RecordHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	s := h.sanitizer.Sanitize
	created, _, err := h.service.AddClient(r.Context(), model.Client{
		CompanyName:      s(req.CompanyName),
		PackageValue:     req.PackageValue,
		CompanyType:      s(req.CompanyType),
		StartDate:        s(req.StartDate),
		AdsSpendBudget:   req.AdsSpendBudget,
		VideosPerMonth:   req.VideosPerMonth,
		RecordingPerson:  s(req.RecordingPerson),
		NeedVideographer: req.NeedVideographer,
		ExtraDetails:     s(req.ExtraDetails),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// --- イベント ---

type eventRequest struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

// ListEvents はイベント一覧を返す。
// GET /api/events
func (h *RecordHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Events)
}

// CreateEvent はイベントを追加する。
// dateはRFC3339または YYYY-MM-DD。
// POST /api/events
func (h *RecordHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if req.Date == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("date is required"))
		return
	}
	date, err := ParseDateTime(req.Date, h.loc)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	s := h.sanitizer.Sanitize
	eventType := s(req.Type)
	if eventType == "" {
		eventType = model.EventTypeMeeting
	}
	created, _, err := h.service.AddEvent(r.Context(), model.Event{
		Title:   s(req.Title),
		Date:    date,
		Time:    s(req.Time),
		Type:    eventType,
		Address: s(req.Address),
		Contact: s(req.Contact),
		Phone:   s(req.Phone),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// --- 紹介 ---

type referralRequest struct {
	Candidate  string `json:"candidate"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ReferredBy string `json:"referredBy"`
	Background string `json:"background"`
	Notes      string `json:"notes"`
}

// ListReferrals は紹介一覧を返す。
// GET /api/referrals
func (h *RecordHandler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Referrals)
}

// CreateReferral は紹介を追加する。ステータスは常に pending で作成される。
// POST /api/referrals
func (h *RecordHandler) CreateReferral(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	s := h.sanitizer.Sanitize
	created, _, err := h.service.AddReferral(r.Context(), model.Referral{
		Candidate:  s(req.Candidate),
		Email:      s(req.Email),
		Phone:      s(req.Phone),
		ReferredBy: s(req.ReferredBy),
		Background: s(req.Background),
		Notes:      s(req.Notes),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateReferral は紹介のステータスと報酬支払い済みフラグを更新する。
// PATCH /api/referrals/{id}
func (h *RecordHandler) UpdateReferral(w http.ResponseWriter, r *http.Request) {
	var patch model.ReferralPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeInvalidBody(w)
		return
	}
	if patch.IsEmpty() {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("at least one of status or rewardPaid is required"))
		return
	}

	updated, _, err := h.service.UpdateReferral(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
