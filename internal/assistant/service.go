package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redreserve/redreserve-backend/pkg/db/models"
	"github.com/redreserve/redreserve-backend/pkg/enums"
	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
	"github.com/redreserve/redreserve-backend/pkg/llm"
	"github.com/redreserve/redreserve-backend/pkg/logger"
)

const (
	minQuestionLength     = 5
	minRequestTextLength  = 8
	minDonationTextLength = 5

	unknownBloodGroup = "UNKNOWN"
	dateLayout        = "2006-01-02"
)

// Service answers assistant questions and drafts form fields from free text.
type Service interface {
	Ask(ctx context.Context, userID *uuid.UUID, req AskRequest) (*AskResponse, error)
	AutofillBloodRequest(ctx context.Context, req AutofillRequest) (*BloodRequestDraft, error)
	AutofillDonation(ctx context.Context, req AutofillRequest) (*DonationDraft, error)
}

type queryStore interface {
	Create(ctx context.Context, query *models.AIQuery) error
}

// ServiceParams wires the assistant. Assistant answers questions; Extractor fills forms.
type ServiceParams struct {
	Assistant llm.Completer
	Extractor llm.Completer
	Queries   queryStore
	Logger    *logger.Logger
}

type service struct {
	assistant llm.Completer
	extractor llm.Completer
	queries   queryStore
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Assistant == nil {
		return nil, fmt.Errorf("assistant completer required")
	}
	if params.Extractor == nil {
		return nil, fmt.Errorf("extractor completer required")
	}
	if params.Queries == nil {
		return nil, fmt.Errorf("assistant query store required")
	}
	return &service{
		assistant: params.Assistant,
		extractor: params.Extractor,
		queries:   params.Queries,
		logg:      params.Logger,
	}, nil
}

func (s *service) Ask(ctx context.Context, userID *uuid.UUID, req AskRequest) (*AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if len([]rune(question)) < minQuestionLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "A valid blood-related question is required")
	}

	answer, err := s.assistant.Complete(ctx, llm.CompletionRequest{
		System:      assistantPrompt,
		User:        question,
		Temperature: 0.2,
		MaxTokens:   220,
	})
	if err != nil {
		return nil, err
	}

	record := &models.AIQuery{
		UserID:   userID,
		Question: question,
		Answer:   answer,
		Category: enums.AIQueryCategoryOther,
	}
	if err := s.queries.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store assistant query")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "ai_query_id", record.ID.String()), "assistant.answered")
	}
	return &AskResponse{Answer: answer}, nil
}

func (s *service) AutofillBloodRequest(ctx context.Context, req AutofillRequest) (*BloodRequestDraft, error) {
	text := strings.TrimSpace(req.Text)
	if len([]rune(text)) < minRequestTextLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please describe the blood request properly.")
	}
	raw, err := s.extractor.Complete(ctx, llm.CompletionRequest{
		System:      bloodRequestAutofillPrompt,
		User:        text,
		Temperature: 0.1,
		MaxTokens:   250,
	})
	if err != nil {
		return nil, err
	}

	var draft BloodRequestDraft
	if err := llm.DecodeJSON(raw, &draft); err != nil {
		return nil, err
	}
	draft.BloodGroupRequired = normalizeBloodGroup(draft.BloodGroupRequired)
	draft.UrgencyLevel = normalizeUrgency(draft.UrgencyLevel)
	if draft.UnitsRequested != nil && (*draft.UnitsRequested < 1 || *draft.UnitsRequested > 10) {
		draft.UnitsRequested = nil
	}
	draft.HospitalName = trimOptional(draft.HospitalName)
	draft.ContactNumber = trimOptional(draft.ContactNumber)
	draft.ReasonForRequest = trimOptional(draft.ReasonForRequest)
	return &draft, nil
}

func (s *service) AutofillDonation(ctx context.Context, req AutofillRequest) (*DonationDraft, error) {
	text := strings.TrimSpace(req.Text)
	if len([]rune(text)) < minDonationTextLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please describe your donation appointment properly.")
	}
	raw, err := s.extractor.Complete(ctx, llm.CompletionRequest{
		System:      donationAutofillPrompt,
		User:        text,
		Temperature: 0.1,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, err
	}

	var draft DonationDraft
	if err := llm.DecodeJSON(raw, &draft); err != nil {
		return nil, err
	}
	draft.BloodGroup = normalizeBloodGroup(draft.BloodGroup)
	draft.PreferredDate = trimOptional(draft.PreferredDate)
	if draft.PreferredDate != nil {
		if _, err := time.Parse(dateLayout, *draft.PreferredDate); err != nil {
			draft.PreferredDate = nil
		}
	}
	draft.MedicalHistory = trimOptional(draft.MedicalHistory)
	return &draft, nil
}

func normalizeBloodGroup(value string) string {
	group, err := enums.ParseBloodGroup(value)
	if err != nil {
		return unknownBloodGroup
	}
	return group.String()
}

// normalizeUrgency keeps the form's title-cased labels.
func normalizeUrgency(value string) string {
	urgency, err := enums.ParseUrgency(value)
	if err != nil {
		urgency = enums.UrgencyNormal
	}
	label := urgency.String()
	return strings.ToUpper(label[:1]) + label[1:]
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}
