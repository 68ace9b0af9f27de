package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

const maxBodyBytes = 1 << 20

type idResponse struct {
	ID string `json:"id"`
}

type createContestRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

type fundRequest struct {
	Amount int64 `json:"amount"`
}

type submitEntryRequest struct {
	ContentLink string `json:"content_link"`
}

type castVoteRequest struct {
	CreditID string `json:"credit_id"`
	Amount   int64  `json:"amount"`
}

type contestResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	PrizePool   int64     `json:"prize_pool"`
	Owner       string    `json:"owner"`
	Closed      bool      `json:"closed"`
	CreatedAt   time.Time `json:"created_at"`
}

type entryResponse struct {
	ID          string    `json:"id"`
	ContestID   string    `json:"contest_id"`
	Creator     string    `json:"creator"`
	ContentLink string    `json:"content_link"`
	Votes       int64     `json:"votes"`
	CreatedAt   time.Time `json:"created_at"`
}

type creditResponse struct {
	ID        string    `json:"id"`
	ContestID string    `json:"contest_id"`
	Funder    string    `json:"funder"`
	Allocated int64     `json:"allocated"`
	Used      int64     `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) createContest(w http.ResponseWriter, r *http.Request) {
	var req createContestRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := s.svc.Contests.Create(r.Context(), callerFrom(r.Context()), req.Title, req.Description, req.Deadline)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *HTTPServer) getContest(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Contests.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContestResponse(c))
}

func (s *HTTPServer) closeContest(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Contests.Close(r.Context(), r.PathValue("id"), callerFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) fund(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := s.svc.Credits.Fund(r.Context(), r.PathValue("id"), callerFrom(r.Context()), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *HTTPServer) submitEntry(w http.ResponseWriter, r *http.Request) {
	var req submitEntryRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := s.svc.Entries.Submit(r.Context(), r.PathValue("id"), callerFrom(r.Context()), req.ContentLink)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *HTTPServer) listEntries(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Entries.ListByContest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]entryResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Entries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

func (s *HTTPServer) castVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.svc.Voting.CastVote(r.Context(), r.PathValue("id"), req.CreditID, callerFrom(r.Context()), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) listCredits(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Credits.ListByFunder(r.Context(), callerFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]creditResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, toCreditResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) getCredit(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Credits.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditResponse(c))
}

// decode reads a JSON body into dst. On failure it writes a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, fmt.Errorf("malformed request body: %w: %v", common.ErrInvalidInput, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toContestResponse(c *models.Contest) contestResponse {
	return contestResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Deadline:    c.Deadline,
		PrizePool:   c.PrizePool,
		Owner:       string(c.Owner),
		Closed:      c.Closed,
		CreatedAt:   c.CreatedAt,
	}
}

func toEntryResponse(e *models.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		ContestID:   e.ContestID,
		Creator:     string(e.Creator),
		ContentLink: e.ContentLink,
		Votes:       e.Votes,
		CreatedAt:   e.CreatedAt,
	}
}

func toCreditResponse(c *models.VoteCredit) creditResponse {
	return creditResponse{
		ID:        c.ID,
		ContestID: c.ContestID,
		Funder:    string(c.Funder),
		Allocated: c.Allocated,
		Used:      c.Used,
		CreatedAt: c.CreatedAt,
	}
}
