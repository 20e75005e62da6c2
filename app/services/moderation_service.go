package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/audit"
	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/app/repositories"
	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/internal/moderation"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/event"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/metrics"
	"github.com/shashiranjanraj/krishi/pkg/orm"
	"github.com/shashiranjanraj/krishi/pkg/workerpool"
)

// Moderated entity names, used in audits, events and metrics.
const (
	EntityFarmer  = "farmer"
	EntityLand    = "land"
	EntityProduct = "product"
)

// BulkReport is the per-id outcome of a bulk moderation. Items are
// independent: a failure never undoes or blocks another item.
type BulkReport struct {
	Succeeded []uint          `json:"succeeded"`
	Failed    map[uint]string `json:"failed"`
}

// StatusChange is the payload of FarmerStatusChanged and ListingModerated.
type StatusChange struct {
	Entity   string `json:"entity"`
	EntityID uint   `json:"entity_id"`
	OwnerID  uint   `json:"owner_id"`
	Action   string `json:"action"`
	From     string `json:"from"`
	To       string `json:"to"`
	Notes    string `json:"notes,omitempty"`
	ActorID  uint   `json:"actor_id"`
}

// ModerationService applies admin decisions to farmers, lands and products.
type ModerationService struct {
	users    *repositories.UserRepository
	lands    *repositories.LandRepository
	products *repositories.ProductRepository
	audit    audit.Recorder
	pool     *workerpool.Pool
	cache    cache.Store
	bus      *event.Bus
	now      func() time.Time
}

func NewModerationService(db *gorm.DB, rec audit.Recorder, pool *workerpool.Pool, c cache.Store, bus *event.Bus) *ModerationService {
	return &ModerationService{
		users:    repositories.NewUserRepository(db),
		lands:    repositories.NewLandRepository(db),
		products: repositories.NewProductRepository(db),
		audit:    rec,
		pool:     pool,
		cache:    c,
		bus:      bus,
		now:      time.Now,
	}
}

// ─── Farmers ──────────────────────────────────────────────────────────────────

// TransitionFarmer applies action to farmer id. Actions not defined for the
// farmer's current status fail with InvalidTransition; in particular an
// active farmer cannot be rejected, only suspended.
func (s *ModerationService) TransitionFarmer(ctx context.Context, sess *access.Session, id uint, action, notes string) (*models.User, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, err
	}
	act, err := moderation.ParseFarmerAction(action)
	if err != nil {
		return nil, apperr.Invalid(apperr.CodeInvalidInput, "%v", err)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != access.RoleFarmer {
		return nil, apperr.NotFound("farmer")
	}

	from := user.Status
	to, err := moderation.NextAccountStatus(from, act)
	if err != nil {
		s.count(EntityFarmer, action, "rejected")
		return nil, apperr.Transition(err)
	}
	ok, err := s.users.CompareAndSetStatus(ctx, id, from, to, notes)
	if err != nil {
		s.count(EntityFarmer, action, "error")
		return nil, apperr.Server(err)
	}
	if !ok {
		// another admin moved the farmer first
		s.count(EntityFarmer, action, "rejected")
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "farmer status changed concurrently, reload and retry")
	}

	user.Status, user.Notes = to, notes
	s.after(ctx, sess, StatusChange{
		Entity: EntityFarmer, EntityID: id, OwnerID: id, Action: action,
		From: string(from), To: string(to), Notes: notes,
	})
	return user, nil
}

// Farmers lists farmer accounts for the admin board.
func (s *ModerationService) Farmers(ctx context.Context, sess *access.Session, status string, p orm.Page) ([]models.User, orm.Pagination, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, orm.Pagination{}, err
	}
	users, pg, err := s.users.Farmers(ctx, status, p)
	if err != nil {
		return nil, orm.Pagination{}, apperr.Server(err)
	}
	return users, pg, nil
}

// Audits lists recent decisions, newest first.
func (s *ModerationService) Audits(ctx context.Context, sess *access.Session, entity string, limit int) ([]models.ModerationAudit, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, err
	}
	out, err := s.audit.Recent(ctx, entity, limit)
	if err != nil {
		return nil, apperr.Server(err)
	}
	return out, nil
}

// ─── Listings ─────────────────────────────────────────────────────────────────

// TransitionLand applies a listing action to land id.
func (s *ModerationService) TransitionLand(ctx context.Context, sess *access.Session, id uint, action, notes string) (*models.Land, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, err
	}
	act, err := moderation.ParseListingAction(action)
	if err != nil {
		return nil, apperr.Invalid(apperr.CodeInvalidInput, "%v", err)
	}
	land, err := s.transitionLand(ctx, sess, id, act, notes)
	if err == nil {
		invalidateCatalogue(ctx, s.cache)
	}
	return land, err
}

// TransitionProduct applies a listing action to product id.
func (s *ModerationService) TransitionProduct(ctx context.Context, sess *access.Session, id uint, action, notes string) (*models.Product, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, err
	}
	act, err := moderation.ParseListingAction(action)
	if err != nil {
		return nil, apperr.Invalid(apperr.CodeInvalidInput, "%v", err)
	}
	product, err := s.transitionProduct(ctx, sess, id, act, notes)
	if err == nil {
		invalidateCatalogue(ctx, s.cache)
	}
	return product, err
}

// BulkLands applies action to every land in ids, one independent
// transition per id on the worker pool.
func (s *ModerationService) BulkLands(ctx context.Context, sess *access.Session, ids []uint, action, notes string) (*BulkReport, error) {
	return s.bulk(ctx, sess, ids, action, func(ctx context.Context, id uint, act moderation.ListingAction) error {
		_, err := s.transitionLand(ctx, sess, id, act, notes)
		return err
	})
}

// BulkProducts applies action to every product in ids.
func (s *ModerationService) BulkProducts(ctx context.Context, sess *access.Session, ids []uint, action, notes string) (*BulkReport, error) {
	return s.bulk(ctx, sess, ids, action, func(ctx context.Context, id uint, act moderation.ListingAction) error {
		_, err := s.transitionProduct(ctx, sess, id, act, notes)
		return err
	})
}

func (s *ModerationService) bulk(ctx context.Context, sess *access.Session, ids []uint, action string,
	apply func(context.Context, uint, moderation.ListingAction) error) (*BulkReport, error) {
	if err := authorize(sess, access.RoleAdmin); err != nil {
		return nil, err
	}
	act, err := moderation.ParseListingAction(action)
	if err != nil {
		return nil, apperr.Invalid(apperr.CodeInvalidInput, "%v", err)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, apperr.InvalidFields(map[string]string{"ids": "The ids field is required."})
	}

	errs := workerpool.ForEach(ctx, s.pool, ids, func(ctx context.Context, id uint) error {
		return apply(ctx, id, act)
	})

	report := &BulkReport{Succeeded: []uint{}, Failed: map[uint]string{}}
	for _, id := range ids {
		if err, failed := errs[id]; failed {
			report.Failed[id] = reason(err)
			continue
		}
		report.Succeeded = append(report.Succeeded, id)
	}
	if len(report.Succeeded) > 0 {
		invalidateCatalogue(ctx, s.cache)
	}
	logger.WithCtx(ctx).Info("moderation: bulk", "action", action,
		"succeeded", len(report.Succeeded), "failed", len(report.Failed))
	return report, nil
}

func (s *ModerationService) transitionLand(ctx context.Context, sess *access.Session, id uint, act moderation.ListingAction, notes string) (*models.Land, error) {
	land, err := s.lands.FindByID(ctx, id)
	if err != nil {
		s.count(EntityLand, string(act), "error")
		return nil, err
	}
	from := land.Status
	to, err := moderation.NextListingStatus(from, act)
	if err != nil {
		return nil, apperr.Transition(err)
	}
	if err := s.lands.SetStatus(ctx, id, to, notes); err != nil {
		s.count(EntityLand, string(act), "error")
		return nil, apperr.Server(err)
	}
	land.Status, land.Notes = to, notes
	land.Derive()
	s.after(ctx, sess, StatusChange{
		Entity: EntityLand, EntityID: id, OwnerID: land.FarmerID, Action: string(act),
		From: string(from), To: string(to), Notes: notes,
	})
	return land, nil
}

func (s *ModerationService) transitionProduct(ctx context.Context, sess *access.Session, id uint, act moderation.ListingAction, notes string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		s.count(EntityProduct, string(act), "error")
		return nil, err
	}
	from := product.Status
	to, err := moderation.NextListingStatus(from, act)
	if err != nil {
		return nil, apperr.Transition(err)
	}
	if err := s.products.SetStatus(ctx, id, to, notes); err != nil {
		s.count(EntityProduct, string(act), "error")
		return nil, apperr.Server(err)
	}
	product.Status, product.Notes = to, notes
	product.Derive()
	s.after(ctx, sess, StatusChange{
		Entity: EntityProduct, EntityID: id, OwnerID: product.FarmerID, Action: string(act),
		From: string(from), To: string(to), Notes: notes,
	})
	return product, nil
}

// after records the audit entry, counts the transition and fires the event.
func (s *ModerationService) after(ctx context.Context, sess *access.Session, c StatusChange) {
	c.ActorID = sess.UserID
	s.count(c.Entity, c.Action, "ok")

	err := s.audit.Record(ctx, models.ModerationAudit{
		ActorID: c.ActorID, Entity: c.Entity, EntityID: c.EntityID, Action: c.Action,
		From: c.From, To: c.To, Notes: c.Notes, At: s.now(),
	})
	if err != nil {
		logger.WithCtx(ctx).Error("moderation: audit failed", "entity", c.Entity, "id", c.EntityID, "error", err)
	}

	logger.WithCtx(ctx).Info("moderation: transition",
		"entity", c.Entity, "id", c.EntityID, "action", c.Action, "from", c.From, "to", c.To)

	name := event.ListingModerated
	if c.Entity == EntityFarmer {
		name = event.FarmerStatusChanged
	}
	s.bus.FireAsync(ctx, name, c)
}

func (s *ModerationService) count(entity, action, result string) {
	metrics.ModerationTransitions.WithLabelValues(entity, action, result).Inc()
}

func reason(err error) string {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindServer {
			return "internal error"
		}
		return e.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "not attempted: " + err.Error()
	}
	return "internal error"
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
