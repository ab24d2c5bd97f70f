package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/metrics"
	"hotelbot/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reply texts
const (
	ReplyEmptyMessage = "Tell me what you need (location, dates, radius)."
	ReplyNLUError     = "NLU error: I couldn't understand that request. Try including a ZIP or city, a radius, and dates."
	ReplyNoResults    = "No hotels found for those dates/area. Try widening the radius or changing dates."
)

// Stream event names emitted before the final result
const (
	EventExtracting = "extracting"
	EventSlots      = "slots"
	EventGeocoded   = "geocoded"
	EventSearching  = "searching"
)

const searchLogTimeout = 5 * time.Second

// SearchEventCallback is called for streaming chat events
type SearchEventCallback func(event string, data any) error

// SearchLogger records completed searches
type SearchLogger interface {
	LogSearch(ctx context.Context, entry *model.SearchLog) error
}

// ChatService runs extraction, normalization, geocoding and search for one message
type ChatService struct {
	extractor  SlotExtractor
	normalizer *Normalizer
	geocoder   Geocoder
	searcher   OfferSearcher
	searchLog  SearchLogger
	metrics    *metrics.Metrics
	log        *zap.SugaredLogger
}

// NewChatService creates a new chat service. searchLog may be nil.
func NewChatService(
	extractor SlotExtractor,
	normalizer *Normalizer,
	geocoder Geocoder,
	searcher OfferSearcher,
	searchLog SearchLogger,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *ChatService {
	return &ChatService{
		extractor:  extractor,
		normalizer: normalizer,
		geocoder:   geocoder,
		searcher:   searcher,
		searchLog:  searchLog,
		metrics:    m,
		log:        log,
	}
}

// Handle answers one chat message. Every failure becomes a reply; nothing is returned as an error.
func (s *ChatService) Handle(ctx context.Context, message string) *model.ChatResponse {
	return s.run(ctx, message, nil)
}

// HandleStream is Handle with stage events sent to callback as each step finishes
func (s *ChatService) HandleStream(ctx context.Context, message string, callback SearchEventCallback) *model.ChatResponse {
	return s.run(ctx, message, callback)
}

func (s *ChatService) run(ctx context.Context, message string, callback SearchEventCallback) *model.ChatResponse {
	startTime := time.Now()
	emit := func(event string, data any) {
		if callback == nil {
			return
		}
		if err := callback(event, data); err != nil {
			s.log.Debugw("Stream event not delivered", "event", event, "error", err)
		}
	}

	resp := s.answer(ctx, strings.TrimSpace(message), emit)
	resp.Took = time.Since(startTime).Milliseconds()

	outcome := resp.ErrorKind
	switch {
	case outcome != "":
	case resp.Best != nil:
		outcome = "ok"
	case resp.Reply == ReplyEmptyMessage:
		outcome = "empty"
	default:
		outcome = "no_results"
	}
	s.metrics.ChatReply(outcome)

	return resp
}

func (s *ChatService) answer(ctx context.Context, message string, emit func(string, any)) *model.ChatResponse {
	if message == "" {
		return &model.ChatResponse{Reply: ReplyEmptyMessage}
	}
	resp := &model.ChatResponse{SearchID: uuid.NewString()}
	startTime := time.Now()

	// 1) language model -> raw slots
	emit(EventExtracting, map[string]any{"message": message})
	extractStart := time.Now()
	raw, err := s.extractor.Extract(ctx, message)
	s.metrics.ObserveUpstream(metrics.UpstreamLLM, "extract", extractStart, err)
	if err != nil {
		s.log.Warnw("Slot extraction failed", "search_id", resp.SearchID, "error", err)
		return s.failure(resp, apperrors.NLU(err))
	}

	// 2) normalize and validate
	norm := s.normalizer.Normalize(raw)
	if !norm.OK {
		return s.failure(resp, apperrors.Incomplete(norm.Question))
	}
	slots := norm.Slots
	view := slots.View()
	resp.Slots = &view
	emit(EventSlots, view)

	// 3) geocode
	coords, err := s.geocoder.Resolve(ctx, slots.Location)
	if err != nil {
		s.log.Warnw("Geocoding failed", "search_id", resp.SearchID, "query", GeocodeQuery(slots.Location), "error", err)
		if apperrors.KindOf(err) == "" {
			err = apperrors.Geocode("geocoding failed", err)
		}
		return s.failure(resp, err)
	}
	emit(EventGeocoded, coords)

	// 4) search
	emit(EventSearching, map[string]any{"radius": slots.Radius.String()})
	result, err := s.searcher.Search(ctx, model.SearchQuery{
		Coordinates: coords,
		RadiusText:  slots.Radius.String(),
		CheckIn:     slots.CheckInDate(),
		CheckOut:    slots.CheckOutDate(),
		Adults:      slots.Adults,
		Currency:    slots.Currency,
	})
	if err != nil {
		s.log.Warnw("Offer search failed", "search_id", resp.SearchID, "error", err)
		s.logSearch(resp.SearchID, message, slots, nil, err, time.Since(startTime))
		return s.failure(resp, err)
	}
	s.logSearch(resp.SearchID, message, slots, result, nil, time.Since(startTime))

	if result.Best == nil {
		resp.Reply = ReplyNoResults
		return resp
	}

	best := result.Best
	resp.Reply = fmt.Sprintf("Cheapest: %s - %s (distance: %s)", best.Name, best.DisplayTotal(), best.DisplayDistance())
	bestView := best.View()
	resp.Best = &bestView
	resp.Top = make([]model.OfferView, 0, len(result.Top))
	for i := range result.Top {
		resp.Top = append(resp.Top, result.Top[i].View())
	}
	return resp
}

// failure turns a pipeline error into a reply carrying its kind
func (s *ChatService) failure(resp *model.ChatResponse, err error) *model.ChatResponse {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Search(0, err)
	}
	resp.ErrorKind = string(appErr.Kind)

	switch appErr.Kind {
	case apperrors.KindNLU:
		resp.Reply = ReplyNLUError
	case apperrors.KindIncompleteSlots:
		resp.Reply = appErr.Message
		resp.NeedsMore = true
	case apperrors.KindGeocode:
		resp.Reply = fmt.Sprintf("I couldn't locate that area: %s", appErr.Message)
	case apperrors.KindValidation:
		resp.Reply = fmt.Sprintf("Those search details don't look right: %s", appErr.Message)
	default:
		resp.Reply = fmt.Sprintf("Search error: %s", appErr.Message)
	}
	return resp
}

// logSearch writes the outcome in the background; a failed write only logs a warning
func (s *ChatService) logSearch(searchID, message string, slots *model.NormalizedSlots, result *SearchResult, searchErr error, took time.Duration) {
	if s.searchLog == nil {
		return
	}

	entry := &model.SearchLog{
		SearchID:       searchID,
		Message:        message,
		Currency:       slots.Currency,
		ResponseTimeMs: took.Milliseconds(),
	}
	if m, err := model.ToJSONMap(slots.View()); err == nil {
		entry.Slots = m
	}
	if searchErr != nil {
		entry.ErrorKind = string(apperrors.KindOf(searchErr))
	}
	if result != nil {
		entry.ResultCount = result.Total
		entry.UsedFallback = result.UsedFallback
		if result.Best != nil {
			entry.CheapestTotal = decimal.NullDecimal{Decimal: result.Best.Total, Valid: true}
			entry.Currency = result.Best.Currency
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), searchLogTimeout)
		defer cancel()
		if err := s.searchLog.LogSearch(ctx, entry); err != nil {
			s.log.Warnw("Failed to write search log", "search_id", searchID, "error", err)
		}
	}()
}
