package geo

import (
	"context"
	"math"

	"pawlina-api/pkg/logger"

	"go.uber.org/zap"
)

// earthRadiusMiles 球体半径（英里）
const earthRadiusMiles = 3958.8

// Service 判定邮编是否在配送范围内
type Service struct {
	geocoder    Geocoder
	origin      string  // 店铺邮编
	radiusMiles float64 // 含边界
}

func NewService(geocoder Geocoder, originPostcode string, radiusMiles float64) *Service {
	return &Service{
		geocoder:    geocoder,
		origin:      originPostcode,
		radiusMiles: radiusMiles,
	}
}

// WithinServiceRadius 目标邮编到店铺的大圆距离是否在配送半径内（含边界）
// 任一邮编解析失败一律视为超出范围：范围无法确认时绝不放行
func (s *Service) WithinServiceRadius(ctx context.Context, postcode string) bool {
	origin, err := s.geocoder.Resolve(ctx, s.origin)
	if err != nil {
		logger.Log.Warn("origin postcode resolution failed, failing closed",
			zap.String("postcode", s.origin), zap.Error(err))
		return false
	}

	target, err := s.geocoder.Resolve(ctx, postcode)
	if err != nil {
		logger.Log.Warn("target postcode resolution failed, failing closed",
			zap.String("postcode", postcode), zap.Error(err))
		return false
	}

	return HaversineMiles(origin, target) <= s.radiusMiles
}

// HaversineMiles 两坐标间的大圆距离（英里）
func HaversineMiles(a, b Coordinates) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}
