package service

import (
	"context"
	"errors"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/query"
	"github.com/metabo-ui/metabo-ui/logger"
)

type SearchService struct {
	metabolites model.MetaboliteStore
}

func NewSearchService(metabolites model.MetaboliteStore) *SearchService {
	return &SearchService{metabolites: metabolites}
}

// Search validates the selection, then runs the weight query. Every
// validation failure is returned before the store is queried.
func (s *SearchService) Search(ctx context.Context, sel query.Selection) ([]model.MetaboliteSummary, error) {
	if sel.IsEmpty() {
		return nil, ErrNoAttributes
	}

	r, err := query.ParseWeightRange(sel)
	if err != nil {
		return nil, toValidationError(err)
	}
	if r.Inverted() {
		return nil, ErrWeightRange
	}

	q, err := query.Build(sel)
	if err != nil {
		return nil, toValidationError(err)
	}
	logger.Debug("metabolite search:", q.String())

	items, err := s.metabolites.Search(ctx, q)
	if err != nil {
		return nil, backendError(err)
	}
	if len(items) == 0 {
		return nil, ErrNoResults
	}
	return items, nil
}

func (s *SearchService) GetMetabolite(ctx context.Context, id string) (*model.Metabolite, error) {
	m, err := s.metabolites.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrMetaboliteNotFound
	} else if err != nil {
		return nil, backendError(err)
	}
	return m, nil
}

func toValidationError(err error) error {
	if errors.Is(err, query.ErrNoFilter) {
		return ErrNoWeightBound
	}
	var qErr *query.ValidationError
	if errors.As(err, &qErr) {
		return &ValidationError{Field: qErr.Field, Reason: "must be a number"}
	}
	return err
}
