package app

import (
	"fmt"

	"github.com/taoyao-code/frame-ingest/internal/api"
	cfgpkg "github.com/taoyao-code/frame-ingest/internal/config"
	"github.com/taoyao-code/frame-ingest/internal/ingest"
)

// surfaceMessages 各接入面返回给客户端的错误文案
var surfaceMessages = map[string]ingest.Messages{
	api.SurfaceFrame: {
		MissingKey: "'%s'",
	},
	api.SurfacePayload: {
		EmptyBody:      "No data provided",
		MalformedFrame: "Invalid CRC",
	},
}

var surfaceRoutes = map[string]api.Routes{
	api.SurfaceFrame:   api.FrameRoutes,
	api.SurfacePayload: api.PayloadRoutes,
}

// BuildSurfaces 为每个已启用的接入面组装校验器与存储
func BuildSurfaces(cfg *cfgpkg.Config, stores *Stores) ([]api.Surface, error) {
	var out []api.Surface
	for _, e := range enabledSurfaces(cfg) {
		v, err := ingest.New(ingest.Options{
			APIKey:             cfg.Auth.APIKey,
			APIKeyHeader:       e.cfg.APIKeyHeader,
			RequireContentType: e.cfg.RequireContentType,
			Field:              e.cfg.Field,
			StrictFrameLength:  cfg.Ingest.StrictFrameLength,
			Messages:           surfaceMessages[e.name],
		})
		if err != nil {
			return nil, fmt.Errorf("surface %s: %w", e.name, err)
		}
		st := stores.Get(e.name)
		if st == nil {
			return nil, fmt.Errorf("surface %s: no store", e.name)
		}
		out = append(out, api.Surface{
			Name:      e.name,
			Routes:    surfaceRoutes[e.name],
			Validator: v,
			Store:     st,
		})
	}
	return out, nil
}
