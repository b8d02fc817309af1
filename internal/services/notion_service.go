package services

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/ArtfulOneXD/MetaTest/internal/models"
)

// NotionService writes leads as pages in the configured Notion database.
// Property names follow the database schema: "Client Name" is the title,
// the rest are rich text, date, checkbox and status columns.
type NotionService struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
}

func NewNotionService(token, databaseID string) *NotionService {
	return &NotionService{
		client:     notionapi.NewClient(notionapi.Token(token)),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

func (n *NotionService) SaveLead(ctx context.Context, lead *models.Lead) error {
	start := notionapi.Date(lead.DateTime)

	jobDone := "Not started"
	if lead.JobDone {
		jobDone = "Done"
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: n.databaseID,
		},
		Properties: notionapi.Properties{
			"Client Name":          titleProperty(lead.ClientName),
			"Contact Phone":        richTextProperty(lead.ContactPhone),
			"Contact Email":        richTextProperty(lead.ContactEmail),
			"Location":             richTextProperty(lead.Location),
			"Task":                 richTextProperty(lead.Task),
			"Description":          richTextProperty(lead.Description),
			"Conversation Summary": richTextProperty(lead.ConversationSummary),
			"PSID":                 richTextProperty(lead.UserID),
			"Time": notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &start},
			},
			"Follow-up Needed": notionapi.CheckboxProperty{Checkbox: lead.FollowUp},
			"Job Scheduled":    notionapi.CheckboxProperty{Checkbox: lead.JobScheduled},
			"Job Done": notionapi.StatusProperty{
				Status: notionapi.Status{Name: jobDone},
			},
		},
	}

	if _, err := n.client.Page.Create(ctx, req); err != nil {
		return fmt.Errorf("creating Notion page: %w", err)
	}
	return nil
}

func titleProperty(content string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Title: []notionapi.RichText{{
			Text: &notionapi.Text{Content: content},
		}},
	}
}

func richTextProperty(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{{
			Text: &notionapi.Text{Content: content},
		}},
	}
}
