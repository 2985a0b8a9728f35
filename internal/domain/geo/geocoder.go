package geo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Coordinates 邮编解析出的坐标
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder 邮编 → 坐标解析能力
// 解析失败（未知邮编、服务不可用）必须返回 error，调用方据此 fail closed
type Geocoder interface {
	Resolve(ctx context.Context, postcode string) (Coordinates, error)
}

// postcodesClient postcodes.io 客户端
type postcodesClient struct {
	client *resty.Client
}

// NewPostcodesClient 创建 postcodes.io 解析客户端
func NewPostcodesClient(baseURL string) Geocoder {
	return &postcodesClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second).
			SetRetryCount(1),
	}
}

type postcodeResponse struct {
	Status int `json:"status"`
	Result struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"result"`
}

func (p *postcodesClient) Resolve(ctx context.Context, postcode string) (Coordinates, error) {
	pc := strings.TrimSpace(postcode)
	if pc == "" {
		return Coordinates{}, fmt.Errorf("empty postcode")
	}

	var out postcodeResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/postcodes/" + url.PathEscape(pc))
	if err != nil {
		return Coordinates{}, fmt.Errorf("postcode lookup failed: %w", err)
	}
	if resp.IsError() || out.Status != 200 {
		return Coordinates{}, fmt.Errorf("postcode %q not resolvable (status %d)", pc, resp.StatusCode())
	}

	return Coordinates{Lat: out.Result.Latitude, Lng: out.Result.Longitude}, nil
}
