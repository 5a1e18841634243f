package likes

import (
	"context"
	"fmt"

	"gamestore/backend/internal/logging"
	"gamestore/backend/internal/metrics"
	"gamestore/backend/internal/models"

	"gorm.io/gorm"
)

// Repair reports the outcome of reconciling one kind.
type Repair struct {
	Kind     Kind  `json:"kind"`
	Repaired int64 `json:"repaired"`
}

// Reconcile rewrites like_count from the join-row count for every target of
// kind whose counter drifted, and reports how many targets changed.
func (s *Service) Reconcile(ctx context.Context, kind Kind) (Repair, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Repair{}, models.NewInvalidArgumentError(fmt.Sprintf("unknown like target %q", kind))
	}

	db := s.db.WithContext(ctx)
	actual := db.Table(d.joinTable+" AS l").
		Select("COUNT(*)").
		Where("l." + d.column + " = " + d.table + ".id")

	result := db.Model(d.target()).
		Where("like_count <> (?)", actual).
		UpdateColumn("like_count", gorm.Expr("(?)", actual))
	if result.Error != nil {
		return Repair{}, fmt.Errorf("reconcile %s likes: %w", kind, result.Error)
	}

	repair := Repair{Kind: kind, Repaired: result.RowsAffected}
	if repair.Repaired > 0 {
		metrics.LikeCountersRepaired.WithLabelValues(string(kind)).Add(float64(repair.Repaired))
		logging.Ctx(ctx).Warn().
			Str("kind", string(kind)).
			Int64("repaired", repair.Repaired).
			Msg("like counters drifted and were repaired")
	}
	return repair, nil
}

// ReconcileAll reconciles every kind, stopping at the first failure.
func (s *Service) ReconcileAll(ctx context.Context) ([]Repair, error) {
	repairs := make([]Repair, 0, len(descriptors))
	for _, kind := range Kinds() {
		repair, err := s.Reconcile(ctx, kind)
		if err != nil {
			return repairs, err
		}
		repairs = append(repairs, repair)
	}
	return repairs, nil
}
