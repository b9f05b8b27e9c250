package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Store is the Postgres-backed source of truth for categories and questions.
type Store interface {
	CategoriesByIDs(ctx context.Context, ids []string) ([]Category, error)
	ListAll(ctx context.Context) ([]Category, error)
	QuestionsByCategories(ctx context.Context, categoryIDs []string) ([]Question, error)
}

// allCategoriesKey is the cache key segment for the full category listing.
var allCategoriesKey = []string{"*"}

// ReadCache fronts the store; a nil result with nil error means cache miss.
type ReadCache interface {
	GetCategories(ctx context.Context, ids []string) ([]Category, error)
	SetCategories(ctx context.Context, ids []string, cats []Category) error
	GetQuestions(ctx context.Context, categoryIDs []string) ([]Question, error)
	SetQuestions(ctx context.Context, categoryIDs []string, qs []Question) error
}

// Service serves the catalog read path for session start. Cache failures are
// logged and the store is hit directly.
type Service struct {
	store  Store
	cache  ReadCache
	logger zerolog.Logger
}

func NewService(store Store, cache ReadCache, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Categories returns the categories for the given ids, preserving input order.
func (s *Service) Categories(ctx context.Context, ids []string) ([]Category, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCategories(ctx, ids); err != nil {
			s.logger.Warn().Err(err).Msg("category cache read failed")
		} else if cached != nil {
			return orderCategories(cached, ids), nil
		}
	}

	cats, err := s.store.CategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, ids, cats); err != nil {
			s.logger.Warn().Err(err).Msg("category cache write failed")
		}
	}
	return orderCategories(cats, ids), nil
}

// All returns every category, for the draft screen.
func (s *Service) All(ctx context.Context) ([]Category, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCategories(ctx, allCategoriesKey); err != nil {
			s.logger.Warn().Err(err).Msg("category cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	cats, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, allCategoriesKey, cats); err != nil {
			s.logger.Warn().Err(err).Msg("category cache write failed")
		}
	}
	return cats, nil
}

// Questions returns all questions belonging to the given categories, sorted
// by id for deterministic downstream selection.
func (s *Service) Questions(ctx context.Context, categoryIDs []string) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetQuestions(ctx, categoryIDs); err != nil {
			s.logger.Warn().Err(err).Msg("question cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	qs, err := s.store.QuestionsByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })

	if s.cache != nil {
		if err := s.cache.SetQuestions(ctx, categoryIDs, qs); err != nil {
			s.logger.Warn().Err(err).Msg("question cache write failed")
		}
	}
	return qs, nil
}

func orderCategories(cats []Category, ids []string) []Category {
	byID := make(map[string]Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	ordered := make([]Category, 0, len(cats))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
