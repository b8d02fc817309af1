package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ArtfulOneXD/MetaTest/internal/llm"
	"github.com/ArtfulOneXD/MetaTest/internal/models"
)

// LeadSink persists an extracted lead to the durable store (Notion).
type LeadSink interface {
	SaveLead(ctx context.Context, lead *models.Lead) error
}

const extractionPromptFmt = `You are analyzing a handyman chat conversation.
Extract the following fields exactly as they appear in the Notion database:

- Client Name
- Contact Phone
- Contact Email
- Location
- Task
- Description
- Conversation Summary (1-2 sentence summary)
- Time (ISO format if possible)

Return JSON only with these keys.
Leave fields blank if info is missing.
Do not add extra fields or text.

Conversation:
%s`

// LeadService turns a finished conversation into a structured lead: it runs
// the extraction prompt, applies the skip-persist rule, keeps a local copy
// on disk and pushes the lead to the sink. Everything here is best-effort;
// failures are logged and the lead is dropped.
type LeadService struct {
	provider llm.Provider
	sink     LeadSink

	mu        sync.RWMutex
	leads     map[string]*models.Lead
	leadsFile string
}

func NewLeadService(provider llm.Provider, sink LeadSink, dataDir string) *LeadService {
	s := &LeadService{
		provider:  provider,
		sink:      sink,
		leads:     make(map[string]*models.Lead),
		leadsFile: filepath.Join(dataDir, "leads.json"),
	}
	s.loadFromDisk()
	return s
}

// Finalize is the session finalizer callback. It runs off the webhook path
// with a snapshot of the closed conversation; nothing waits on it and no
// error leaves it.
func (s *LeadService) Finalize(userID string, turns []models.ConversationTurn) {
	if len(turns) == 0 {
		return
	}

	ctx := context.Background()
	transcript := llm.Flatten(turns)

	lead, err := s.Extract(ctx, transcript, userID)
	if err != nil {
		log.Printf("❌ Lead extraction failed for %s, dropping: %v", userID, err)
		return
	}

	if !lead.HasTask() {
		log.Printf("Task missing for %s, skipping save.", userID)
		return
	}

	lead.ID = uuid.New().String()
	lead.CreatedAt = time.Now()
	s.store(lead)

	if s.sink == nil {
		log.Printf("No lead sink configured, kept lead %s locally only", lead.ID)
		return
	}
	if err := s.sink.SaveLead(ctx, lead); err != nil {
		log.Printf("❌ Error saving lead to Notion: %v", err)
		return
	}
	log.Printf("✅ Lead saved to Notion: %s (%s)", lead.Task, userID)
}

// extractionResult matches the JSON keys the prompt asks for.
type extractionResult struct {
	ClientName          string `json:"Client Name"`
	ContactPhone        string `json:"Contact Phone"`
	ContactEmail        string `json:"Contact Email"`
	Location            string `json:"Location"`
	Task                string `json:"Task"`
	Description         string `json:"Description"`
	ConversationSummary string `json:"Conversation Summary"`
	Time                string `json:"Time"`
}

// Extract runs the extraction prompt over a transcript and shapes the model
// output into a lead. A transport failure is an error (no record); an
// unparseable payload is not, it yields an all-blank record.
func (s *LeadService) Extract(ctx context.Context, transcript, userID string) (*models.Lead, error) {
	raw, err := s.provider.Complete(ctx, fmt.Sprintf(extractionPromptFmt, transcript))
	if err != nil {
		return nil, fmt.Errorf("extraction completion: %w", err)
	}

	var parsed extractionResult
	// The model is told to return JSON only, but wrap-up text happens;
	// take the outermost object and treat anything unparseable as blank.
	jsonStart := strings.Index(raw, "{")
	jsonEnd := strings.LastIndex(raw, "}")
	if jsonStart != -1 && jsonEnd > jsonStart {
		if err := json.Unmarshal([]byte(raw[jsonStart:jsonEnd+1]), &parsed); err != nil {
			log.Printf("⚠️ Unparseable extraction payload for %s: %v", userID, err)
			parsed = extractionResult{}
		}
	} else {
		log.Printf("⚠️ No JSON object in extraction payload for %s", userID)
	}

	dateTime := time.Now()
	if parsed.Time != "" {
		if t, err := time.Parse(time.RFC3339, parsed.Time); err == nil {
			dateTime = t
		}
	}

	return &models.Lead{
		UserID:              userID,
		ClientName:          parsed.ClientName,
		ContactPhone:        parsed.ContactPhone,
		ContactEmail:        parsed.ContactEmail,
		Location:            parsed.Location,
		Task:                parsed.Task,
		Description:         parsed.Description,
		ConversationSummary: parsed.ConversationSummary,
		DateTime:            dateTime,
		FollowUp:            parsed.Task != "" || parsed.ContactPhone != "" || parsed.ContactEmail != "",
		JobScheduled:        false,
		JobDone:             false,
	}, nil
}

func (s *LeadService) store(lead *models.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads[lead.ID] = lead
	s.saveToDisk()

	log.Printf("Lead recorded: %s - %s (%s)", lead.ID, lead.Task, lead.UserID)
}

// All returns the stored leads, newest first, optionally only those flagged
// for follow-up.
func (s *LeadService) All(followUpOnly bool) []*models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if followUpOnly && !lead.FollowUp {
			continue
		}
		result = append(result, lead)
	}
	sortLeadsNewestFirst(result)
	return result
}

// ForUser returns the stored leads for one user, newest first.
func (s *LeadService) ForUser(userID string) []*models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Lead
	for _, lead := range s.leads {
		if lead.UserID == userID {
			result = append(result, lead)
		}
	}
	sortLeadsNewestFirst(result)
	return result
}

// Stats summarizes the local lead store.
func (s *LeadService) Stats() *models.LeadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.LeadStats{Total: len(s.leads)}
	for _, lead := range s.leads {
		if lead.FollowUp {
			stats.FollowUps++
		}
		if lead.JobScheduled {
			stats.Scheduled++
		}
		if lead.JobDone {
			stats.Done++
		}
	}
	return stats
}

func sortLeadsNewestFirst(leads []*models.Lead) {
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
}

func (s *LeadService) loadFromDisk() {
	data, err := os.ReadFile(s.leadsFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Could not read leads file: %v", err)
		}
		return
	}

	var leads map[string]*models.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		log.Printf("Could not parse leads file: %v", err)
		return
	}
	if leads == nil {
		// A file holding literal null decodes cleanly to a nil map.
		return
	}
	s.leads = leads
	log.Printf("Loaded %d leads from %s", len(leads), s.leadsFile)
}

// saveToDisk is best-effort; caller holds the lock.
func (s *LeadService) saveToDisk() {
	if err := os.MkdirAll(filepath.Dir(s.leadsFile), 0o755); err != nil {
		log.Printf("Could not create data dir: %v", err)
		return
	}
	data, err := json.MarshalIndent(s.leads, "", "  ")
	if err != nil {
		log.Printf("Could not marshal leads: %v", err)
		return
	}
	if err := os.WriteFile(s.leadsFile, data, 0o644); err != nil {
		log.Printf("Could not write leads file: %v", err)
	}
}
