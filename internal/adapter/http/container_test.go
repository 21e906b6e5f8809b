package http

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/gomega"

	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
	. "tasklist/pkg/test"
)

func testConfig(t *testing.T) *config.AppConfig {
	cfg := config.GetDefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "tasks.db")
	cfg.MigrationsPath = MigrationsPath("sqlite")
	cfg.CursorSecretKey = cfg.JWTSecret

	return cfg
}

func TestNewContainerSQLite(t *testing.T) {
	RegisterTestingT(t)

	for _, driver := range []string{"memory", "none"} {
		cfg := testConfig(t)
		cfg.CacheDriver = driver

		container, err := NewContainer(context.Background(), cfg, nil, nil, telemetry.NewNoOpProbe())

		Expect(err).NotTo(HaveOccurred(), driver)
		Expect(container.TaskHandler).NotTo(BeNil())
		Expect(container.AuthHandler).NotTo(BeNil())
		Expect(container.UserHandler).NotTo(BeNil())
		Expect(container.HealthHandler).NotTo(BeNil())
		Expect(container.JWT.ExpiresIn()).To(Equal(int(cfg.JWTTTL.Seconds())))

		page, err := container.TaskService.List(context.Background(), 1, 0, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Tasks).To(BeEmpty())

		Expect(container.Close()).To(Succeed())
	}
}

func TestNewContainerRedis(t *testing.T) {
	RegisterTestingT(t)

	server := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.CacheDriver = "redis"
	cfg.RedisAddr = server.Addr()

	container, err := NewContainer(context.Background(), cfg, nil, nil, nil)

	Expect(err).NotTo(HaveOccurred())
	defer container.Close()

	Expect(container.Cache.Set(context.Background(), "tasks:1:0:", []byte("[]"), 0)).To(Succeed())
	Expect(server.Exists("tasks:1:0:")).To(BeTrue())
}

func TestNewContainerRedisUnavailable(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig(t)
	cfg.CacheDriver = "redis"
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewContainer(context.Background(), cfg, nil, nil, nil)

	Expect(err).To(HaveOccurred())
}

func TestNewContainerUnknownDriver(t *testing.T) {
	RegisterTestingT(t)

	cfg := testConfig(t)
	cfg.DBDriver = "oracle"

	_, err := NewContainer(context.Background(), cfg, nil, nil, nil)

	Expect(err).To(MatchError(ContainSubstring("unsupported DB_DRIVER")))
}
