package geo

import (
	"context"
	"errors"
	"testing"

	"pawlina-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.Init(true)
}

// MockGeocoder is a mock of Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Resolve(ctx context.Context, postcode string) (Coordinates, error) {
	args := m.Called(ctx, postcode)
	return args.Get(0).(Coordinates), args.Error(1)
}

// Grange-over-Sands town centre
var origin = Coordinates{Lat: 54.1947, Lng: -2.9098}

func TestWithinServiceRadius(t *testing.T) {
	ctx := context.Background()

	t.Run("Nearby postcode is inside the radius", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		svc := NewService(geocoder, "LA11 7EZ", 15)

		// Kendal, roughly 11 miles away
		geocoder.On("Resolve", ctx, "LA11 7EZ").Return(origin, nil)
		geocoder.On("Resolve", ctx, "LA9 4DL").Return(Coordinates{Lat: 54.3280, Lng: -2.7463}, nil)

		assert.True(t, svc.WithinServiceRadius(ctx, "LA9 4DL"))
		geocoder.AssertExpectations(t)
	})

	t.Run("Distant postcode is outside the radius", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		svc := NewService(geocoder, "LA11 7EZ", 15)

		// Central Manchester, well over 50 miles
		geocoder.On("Resolve", ctx, "LA11 7EZ").Return(origin, nil)
		geocoder.On("Resolve", ctx, "M1 1AE").Return(Coordinates{Lat: 53.4808, Lng: -2.2426}, nil)

		assert.False(t, svc.WithinServiceRadius(ctx, "M1 1AE"))
		geocoder.AssertExpectations(t)
	})

	t.Run("Target resolution failure fails closed", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		svc := NewService(geocoder, "LA11 7EZ", 15)

		geocoder.On("Resolve", ctx, "LA11 7EZ").Return(origin, nil)
		geocoder.On("Resolve", ctx, "ZZ99 9ZZ").Return(Coordinates{}, errors.New("not resolvable"))

		assert.False(t, svc.WithinServiceRadius(ctx, "ZZ99 9ZZ"))
		geocoder.AssertExpectations(t)
	})

	t.Run("Origin resolution failure fails closed", func(t *testing.T) {
		geocoder := new(MockGeocoder)
		svc := NewService(geocoder, "LA11 7EZ", 15)

		geocoder.On("Resolve", ctx, "LA11 7EZ").Return(Coordinates{}, errors.New("lookup service down"))

		assert.False(t, svc.WithinServiceRadius(ctx, "LA9 4DL"))
		geocoder.AssertExpectations(t)
	})
}

func TestRadiusBoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()

	// 1 degree of latitude is about 69.05 miles, so 15 miles is ~0.21723 degrees
	justInside := Coordinates{Lat: origin.Lat + 0.2170, Lng: origin.Lng}
	justOutside := Coordinates{Lat: origin.Lat + 0.2180, Lng: origin.Lng}

	assert.InDelta(t, 14.98, HaversineMiles(origin, justInside), 0.05)
	assert.InDelta(t, 15.05, HaversineMiles(origin, justOutside), 0.05)

	geocoder := new(MockGeocoder)
	svc := NewService(geocoder, "LA11 7EZ", 15)

	geocoder.On("Resolve", ctx, "LA11 7EZ").Return(origin, nil)
	geocoder.On("Resolve", ctx, "IN15 0MI").Return(justInside, nil)
	assert.True(t, svc.WithinServiceRadius(ctx, "IN15 0MI"))

	geocoder.On("Resolve", ctx, "OU15 1MI").Return(justOutside, nil)
	assert.False(t, svc.WithinServiceRadius(ctx, "OU15 1MI"))

	// 半径恰好等于距离时仍在服务范围内
	exact := HaversineMiles(origin, justOutside)
	exactSvc := NewService(geocoder, "LA11 7EZ", exact)
	assert.True(t, exactSvc.WithinServiceRadius(ctx, "OU15 1MI"))

	underSvc := NewService(geocoder, "LA11 7EZ", exact-1e-9)
	assert.False(t, underSvc.WithinServiceRadius(ctx, "OU15 1MI"))
}

func TestHaversineMiles(t *testing.T) {
	t.Run("Zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, HaversineMiles(origin, origin))
	})

	t.Run("Distance is symmetric", func(t *testing.T) {
		kendal := Coordinates{Lat: 54.3280, Lng: -2.7463}
		assert.InDelta(t, HaversineMiles(origin, kendal), HaversineMiles(kendal, origin), 1e-9)
	})

	t.Run("Known distance between cities", func(t *testing.T) {
		london := Coordinates{Lat: 51.5074, Lng: -0.1278}
		manchester := Coordinates{Lat: 53.4808, Lng: -2.2426}
		// 约 163 英里
		assert.InDelta(t, 163, HaversineMiles(london, manchester), 3)
	})
}
