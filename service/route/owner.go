package route

import (
	"context"

	entity "endpoint.GO/model/entity"
	"endpoint.GO/model/uow"
)

// RouteOwner is implemented by domain entities that own a route record.
type RouteOwner interface {
	ConsumerModel() string
	ConsumerID() uint
	// RouteInput describes the record the owner wants. Consumer fields are filled in by the service.
	RouteInput() Input
}

// SaveOwnerTx creates the owner's record or brings the existing one in line with RouteInput.
func (s *Service) SaveOwnerTx(ctx context.Context, tx *uow.Tx, owner RouteOwner) (*entity.EndpointRoute, error) {
	in := owner.RouteInput()
	in.ConsumerModel = owner.ConsumerModel()
	in.ConsumerRef = owner.ConsumerID()

	existing, err := s.repo.WithTx(tx.DB).FindByConsumer(ctx, in.ConsumerModel, in.ConsumerRef)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return s.CreateTx(ctx, tx, in)
	}
	in = s.withDefaults(in)
	return s.UpdateTx(ctx, tx, &existing[0], patchFrom(in))
}

// DeleteOwnerTx removes every record owned by owner.
func (s *Service) DeleteOwnerTx(ctx context.Context, tx *uow.Tx, owner RouteOwner) error {
	recs, err := s.repo.WithTx(tx.DB).FindByConsumer(ctx, owner.ConsumerModel(), owner.ConsumerID())
	if err != nil {
		return err
	}
	return s.DeleteTx(ctx, tx, recs...)
}

// OwnerRoutes returns the records owned by owner.
func (s *Service) OwnerRoutes(ctx context.Context, owner RouteOwner) ([]entity.EndpointRoute, error) {
	return s.repo.FindByConsumer(ctx, owner.ConsumerModel(), owner.ConsumerID())
}

func patchFrom(in Input) Patch {
	opts := in.Options
	return Patch{
		Name:               &in.Name,
		Route:              &in.Route,
		RouteGroup:         &in.RouteGroup,
		RouteType:          &in.RouteType,
		AuthType:           &in.AuthType,
		RequestMethod:      &in.RequestMethod,
		RequestContentType: &in.RequestContentType,
		CSRF:               &in.CSRF,
		Options:            &opts,
		Active:             in.Active,
	}
}
