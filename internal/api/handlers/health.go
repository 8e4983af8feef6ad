package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/susankaotw/bulau/internal/api"
	"github.com/susankaotw/bulau/internal/notion"
)

// DatabaseProber is the subset of the document store client the health
// probe needs.
type DatabaseProber interface {
	GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
}

// HealthHandler reports configuration presence and store reachability
// without leaking credentials. Database IDs are shortened to their first
// and last characters.
type HealthHandler struct {
	store      DatabaseProber
	hasToken   bool
	qaDBID     string
	memberDBID string
}

func NewHealthHandler(store DatabaseProber, hasToken bool, qaDBID, memberDBID string) *HealthHandler {
	return &HealthHandler{
		store:      store,
		hasToken:   hasToken,
		qaDBID:     qaDBID,
		memberDBID: memberDBID,
	}
}

type healthEnv struct {
	HasToken    bool   `json:"has_token"`
	HasQADBID   bool   `json:"has_qa_db_id"`
	HasMemberDB bool   `json:"has_member_db_id"`
	QADBID      string `json:"qa_db_id"`
	MemberDBID  string `json:"member_db_id"`
}

type probeResult struct {
	OK    bool   `json:"ok"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}

type memberFields struct {
	EmailField string `json:"emailField"`
	StatusName string `json:"statusName"`
	ExpiryName string `json:"expiryName"`
	LevelName  string `json:"levelName"`
}

type healthResponse struct {
	OK          bool          `json:"ok"`
	Env         healthEnv     `json:"env"`
	QARetrieve  *probeResult  `json:"qaRetrieve,omitempty"`
	MemRetrieve *probeResult  `json:"memRetrieve,omitempty"`
	Fields      *memberFields `json:"fields,omitempty"`
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		OK: true,
		Env: healthEnv{
			HasToken:    h.hasToken,
			HasQADBID:   h.qaDBID != "",
			HasMemberDB: h.memberDBID != "",
			QADBID:      shortDBID(h.qaDBID),
			MemberDBID:  shortDBID(h.memberDBID),
		},
	}

	if h.store != nil && h.qaDBID != "" {
		resp.QARetrieve = h.probe(r.Context(), h.qaDBID, nil)
	}
	if h.store != nil && h.memberDBID != "" {
		var fields memberFields
		resp.MemRetrieve = h.probe(r.Context(), h.memberDBID, &fields)
		if resp.MemRetrieve.OK {
			resp.Fields = &fields
		}
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) probe(ctx context.Context, databaseID string, fields *memberFields) *probeResult {
	db, err := h.store.GetDatabase(ctx, databaseID)
	if err != nil {
		return &probeResult{OK: false, Error: err.Error()}
	}
	if fields != nil {
		*fields = detectMemberFields(db.Properties)
	}
	return &probeResult{OK: true, Title: db.TitleText()}
}

var (
	emailNamePattern  = regexp.MustCompile(`(?i)e-?mail|信箱`)
	statusNamePattern = regexp.MustCompile(`(?i)status|狀態`)
	expiryNamePattern = regexp.MustCompile(`(?i)expire|expiry|有效|到期`)
	levelNamePattern  = regexp.MustCompile(`(?i)level|等級`)
)

// detectMemberFields guesses which member-database columns hold the email,
// status, expiry and level. An email-typed column wins over a name match.
func detectMemberFields(props map[string]notion.PropertySchema) memberFields {
	var fields memberFields
	for name, schema := range props {
		if schema.Type == "email" {
			fields.EmailField = name
			break
		}
	}
	for name, schema := range props {
		if fields.EmailField == "" && emailNamePattern.MatchString(name) {
			fields.EmailField = name
		}
		if fields.StatusName == "" && schema.Type == "select" && statusNamePattern.MatchString(name) {
			fields.StatusName = name
		}
		if fields.ExpiryName == "" && schema.Type == "date" && expiryNamePattern.MatchString(name) {
			fields.ExpiryName = name
		}
		if fields.LevelName == "" && schema.Type == "select" && levelNamePattern.MatchString(name) {
			fields.LevelName = name
		}
	}
	return fields
}

// shortDBID masks all but the edges of a database ID so the probe output
// is safe to paste in bug reports.
func shortDBID(id string) string {
	cleaned := strings.ReplaceAll(id, "-", "")
	if cleaned == "" {
		return ""
	}
	runes := []rune(cleaned)
	if len(runes) <= 12 {
		return cleaned
	}
	return string(runes[:6]) + "…" + string(runes[len(runes)-6:])
}
