package explorer

import (
	"context"
	"fmt"
	"time"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/summary"
	"github.com/rohits-web03/otadash/internal/views"
)

// Kind names a browsable collection.
type Kind string

const (
	KindUsers    Kind = "users"
	KindProducts Kind = "products"
	KindDevices  Kind = "devices"
)

// Kinds lists every collection in display order.
var Kinds = []Kind{KindUsers, KindProducts, KindDevices}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperr.NewNotFoundError(fmt.Sprintf("Collection %q not found", s), nil)
}

// PageSize is the explorer table page size.
const PageSize = 5

type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

type ProductLister interface {
	List(ctx context.Context) ([]models.Product, error)
}

type DeviceLister interface {
	List(ctx context.Context) ([]models.Device, error)
}

// Explorer fetches and shapes the explorer collections.
type Explorer struct {
	users    UserLister
	products ProductLister
	devices  DeviceLister
	now      func() time.Time
}

func New(users UserLister, products ProductLister, devices DeviceLister) *Explorer {
	return &Explorer{users: users, products: products, devices: devices, now: time.Now}
}

func (e *Explorer) Users(ctx context.Context) ([]UserRecord, error) {
	users, err := e.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return UserRecords(users, e.now()), nil
}

func (e *Explorer) Products(ctx context.Context) ([]models.Product, error) {
	return e.products.List(ctx)
}

func (e *Explorer) Devices(ctx context.Context) ([]DeviceRecord, error) {
	devices, err := e.devices.List(ctx)
	if err != nil {
		return nil, err
	}
	return DeviceRecords(devices, e.now()), nil
}

// Page returns one page of kind. The result is a views.Page of the kind's record type.
func (e *Explorer) Page(ctx context.Context, kind Kind, q views.Query) (any, error) {
	switch kind {
	case KindUsers:
		return page(ctx, UserRecordSpec, e.Users, q)
	case KindProducts:
		return page(ctx, ProductSpec, e.Products, q)
	case KindDevices:
		return page(ctx, DeviceRecordSpec, e.Devices, q)
	}
	return nil, apperr.NewNotFoundError(fmt.Sprintf("Collection %q not found", kind), nil)
}

func page[T any](ctx context.Context, spec views.Spec[T], fetch views.Fetcher[T], q views.Query) (views.Page[T], error) {
	items, err := fetch(ctx)
	if err != nil {
		return views.Page[T]{}, err
	}
	return views.Apply(spec, items, q)
}

// Digest condenses kind into the facts handed to the summarizer.
func (e *Explorer) Digest(ctx context.Context, kind Kind) (summary.Request, error) {
	switch kind {
	case KindUsers:
		recs, err := e.Users(ctx)
		if err != nil {
			return summary.Request{}, err
		}
		return digestUsers(recs), nil
	case KindProducts:
		recs, err := e.Products(ctx)
		if err != nil {
			return summary.Request{}, err
		}
		return digestProducts(recs), nil
	case KindDevices:
		recs, err := e.Devices(ctx)
		if err != nil {
			return summary.Request{}, err
		}
		return digestDevices(recs), nil
	}
	return summary.Request{}, apperr.NewNotFoundError(fmt.Sprintf("Collection %q not found", kind), nil)
}

// View builds a live table over kind.
func (e *Explorer) View(kind Kind) views.View {
	switch kind {
	case KindUsers:
		return views.NewLive(UserRecordSpec, e.Users)
	case KindProducts:
		return views.NewLive(ProductSpec, e.Products)
	default:
		return views.NewLive(DeviceRecordSpec, e.Devices)
	}
}
