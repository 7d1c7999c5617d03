package health

import (
	"fmt"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "food-delivery-platform",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      "database",
				Timeout:   3 * time.Second,
				SkipOnErr: false,
				Check: postgres.New(postgres.Config{
					DSN: cfg.Database.GetDSN(),
				}),
			},
			health.Config{
				Name:      "redis",
				Timeout:   2 * time.Second,
				SkipOnErr: false,
				Check: healthRedis.New(
					healthRedis.Config{
						DSN: cfg.RedisConnect.GetDSN(),
					},
				),
			},
		),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
