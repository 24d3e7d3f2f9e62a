// internal/resolver/location/providers.go
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"geoquery-resolver/internal/common/config"
	cerrors "geoquery-resolver/internal/common/errors"
	chttp "geoquery-resolver/internal/common/http"
	"geoquery-resolver/internal/models"
)

// EnterpriseStrategy queries the enterprise geocoder: direct address and
// region search, viewport-shaped responses.
type EnterpriseStrategy struct {
	cfg    config.ProviderConfig
	client *chttp.Client
}

func NewEnterpriseStrategy(cfg config.ProviderConfig) *EnterpriseStrategy {
	return &EnterpriseStrategy{
		cfg:    cfg,
		client: chttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

func (s *EnterpriseStrategy) Name() models.ResolutionStrategy {
	return models.StrategyEnterprise
}

func (s *EnterpriseStrategy) Resolve(ctx context.Context, name, _ string) (models.BoundingBox, error) {
	endpoint := fmt.Sprintf("%s/json?address=%s&key=%s",
		s.cfg.BaseURL, url.QueryEscape(name), url.QueryEscape(s.cfg.APIKey))

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Viewport struct {
					Northeast latLng `json:"northeast"`
					Southwest latLng `json:"southwest"`
				} `json:"viewport"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := s.fetch(ctx, endpoint, &payload); err != nil {
		return models.BoundingBox{}, err
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return models.BoundingBox{}, ErrNoMatch
	}

	vp := payload.Results[0].Geometry.Viewport
	return models.BoundingBox{
		West:  vp.Southwest.Lng,
		South: vp.Southwest.Lat,
		East:  vp.Northeast.Lng,
		North: vp.Northeast.Lat,
	}, nil
}

func (s *EnterpriseStrategy) fetch(ctx context.Context, endpoint string, out interface{}) error {
	return fetchJSON(ctx, s.client, "enterprise", endpoint, out)
}

// RegionalStrategy queries the region-specialist geocoder, constrained to
// region/place/country result types so it never answers with a street
// address.
type RegionalStrategy struct {
	cfg    config.ProviderConfig
	client *chttp.Client
}

func NewRegionalStrategy(cfg config.ProviderConfig) *RegionalStrategy {
	return &RegionalStrategy{
		cfg:    cfg,
		client: chttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

func (s *RegionalStrategy) Name() models.ResolutionStrategy {
	return models.StrategyRegional
}

func (s *RegionalStrategy) Resolve(ctx context.Context, name, _ string) (models.BoundingBox, error) {
	endpoint := fmt.Sprintf("%s/%s.json?access_token=%s&types=region,place,country",
		s.cfg.BaseURL, url.PathEscape(name), url.QueryEscape(s.cfg.APIKey))

	var payload struct {
		Features []struct {
			BBox      []float64 `json:"bbox"`
			PlaceType []string  `json:"place_type"`
			Relevance float64   `json:"relevance"`
		} `json:"features"`
	}
	if err := fetchJSON(ctx, s.client, "regional", endpoint, &payload); err != nil {
		return models.BoundingBox{}, err
	}

	for _, f := range payload.Features {
		if len(f.BBox) != 4 {
			continue
		}
		return models.BoundingBox{
			West:  f.BBox[0],
			South: f.BBox[1],
			East:  f.BBox[2],
			North: f.BBox[3],
		}, nil
	}

	return models.BoundingBox{}, ErrNoMatch
}

// GeneralStrategy queries the general-purpose geocoder, the last stop
// before the free-text fallback.
type GeneralStrategy struct {
	cfg    config.ProviderConfig
	client *chttp.Client
}

func NewGeneralStrategy(cfg config.ProviderConfig) *GeneralStrategy {
	return &GeneralStrategy{
		cfg:    cfg,
		client: chttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

func (s *GeneralStrategy) Name() models.ResolutionStrategy {
	return models.StrategyGeneral
}

func (s *GeneralStrategy) Resolve(ctx context.Context, name, _ string) (models.BoundingBox, error) {
	endpoint := fmt.Sprintf("%s?q=%s&key=%s",
		s.cfg.BaseURL, url.QueryEscape(name), url.QueryEscape(s.cfg.APIKey))

	var payload struct {
		Results []struct {
			Bounds struct {
				Northeast latLng `json:"northeast"`
				Southwest latLng `json:"southwest"`
			} `json:"bounds"`
			Confidence int `json:"confidence"`
		} `json:"results"`
	}
	if err := fetchJSON(ctx, s.client, "general", endpoint, &payload); err != nil {
		return models.BoundingBox{}, err
	}

	if len(payload.Results) == 0 {
		return models.BoundingBox{}, ErrNoMatch
	}

	b := payload.Results[0].Bounds
	return models.BoundingBox{
		West:  b.Southwest.Lng,
		South: b.Southwest.Lat,
		East:  b.Northeast.Lng,
		North: b.Northeast.Lat,
	}, nil
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// fetchJSON performs one provider request. Transport errors and timeouts
// come back as the upstream-unavailable taxonomy so the cascade advances
// instead of aborting.
func fetchJSON(ctx context.Context, client *chttp.Client, provider, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return cerrors.NewGeocoderUnavailableError(provider, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil ||
			(errors.As(err, &netErr) && netErr.Timeout()) {
			return cerrors.NewGeocoderTimeoutError(provider)
		}
		return cerrors.NewGeocoderUnavailableError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cerrors.NewGeocoderUnavailableError(provider, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return cerrors.NewGeocoderUnavailableError(provider, fmt.Errorf("decode response: %w", err))
	}

	return nil
}
