package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

// ErrInvalidConfig возвращается, если значения конфигурации некорректны
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Провайдеры межинстансной блокировки
const (
	LockProviderPostgres = "postgres"
	LockProviderRedis    = "redis"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Lock     LockConfig     `toml:"lock"`
	Booking  BookingConfig  `toml:"booking"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
	// RequestTimeout ограничивает ожидание блокировки и работу с БД в рамках одного запроса
	RequestTimeout int `toml:"request_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// LockConfig настройки межинстансной блокировки распределения
type LockConfig struct {
	Provider string `toml:"provider"` // postgres | redis
	// Key ключ advisory lock; 0 означает ключ по умолчанию
	Key int64 `toml:"key"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	// LeaseTTL время жизни аренды в redis, мс
	LeaseTTL int `toml:"lease_ttl_ms"`
	// RetryInterval период повторных попыток захвата в redis, мс
	RetryInterval int `toml:"retry_interval_ms"`
}

// BookingConfig настройки бронирования комнат
type BookingConfig struct {
	// RateLimitRPS ограничение на создание бронирований с одного адреса; 0 выключает лимит
	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
	// TrustedProxies адреса или подсети прокси, от которых принимается X-Forwarded-For
	TrustedProxies []string            `toml:"trusted_proxies"`
	Rooms          []RoomConfig        `toml:"rooms"`
	Maintenance    []MaintenanceWindow `toml:"maintenance"`
}

// RoomConfig комната и её вместимость
type RoomConfig struct {
	Name     string `toml:"name"`
	Capacity int    `toml:"capacity"`
}

// MaintenanceWindow окно обслуживания "HH:MM"-"HH:MM"
type MaintenanceWindow struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Load читает конфигурацию из TOML файла, подставляет значения по умолчанию и валидирует её
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse разбирает конфигурацию из строки TOML
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 5
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "room-booking-service"
	}

	if c.Lock.Provider == "" {
		c.Lock.Provider = LockProviderPostgres
	}
	if c.Lock.RedisPrefix == "" {
		c.Lock.RedisPrefix = "room-booking:lock"
	}
	if c.Lock.LeaseTTL == 0 {
		c.Lock.LeaseTTL = 10000
	}
	if c.Lock.RetryInterval == 0 {
		c.Lock.RetryInterval = 20
	}

	if c.Booking.RateLimitBurst == 0 {
		c.Booking.RateLimitBurst = 10
	}
	if len(c.Booking.Rooms) == 0 {
		for _, room := range domain.DefaultRooms {
			c.Booking.Rooms = append(c.Booking.Rooms, RoomConfig{Name: string(room.Name), Capacity: room.Capacity})
		}
	}
	if c.Booking.Maintenance == nil {
		for _, window := range domain.DefaultMaintenanceWindows() {
			c.Booking.Maintenance = append(c.Booking.Maintenance, MaintenanceWindow{
				From: window.From.String(),
				To:   window.To.String(),
			})
		}
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535, got %d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Lock.Provider {
	case LockProviderPostgres:
	case LockProviderRedis:
		if strings.TrimSpace(c.Lock.RedisAddr) == "" {
			return fmt.Errorf("%w: lock.redis_addr is required for redis provider", ErrInvalidConfig)
		}
		if c.Lock.LeaseTTL < 0 || c.Lock.RetryInterval < 0 {
			return fmt.Errorf("%w: lock.lease_ttl_ms and lock.retry_interval_ms must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown lock.provider %q", ErrInvalidConfig, c.Lock.Provider)
	}

	if c.Booking.RateLimitRPS < 0 {
		return fmt.Errorf("%w: booking.rate_limit_rps must not be negative", ErrInvalidConfig)
	}

	if _, err := c.Booking.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if _, err := c.Booking.Catalog(); err != nil {
		return err
	}
	if _, err := c.Booking.MaintenanceWindows(); err != nil {
		return err
	}

	return nil
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Catalog строит каталог комнат
func (b BookingConfig) Catalog() (*domain.RoomCatalog, error) {
	rooms := make([]domain.Room, 0, len(b.Rooms))
	for _, room := range b.Rooms {
		rooms = append(rooms, domain.Room{Name: domain.RoomName(room.Name), Capacity: room.Capacity})
	}

	catalog, err := domain.NewRoomCatalog(rooms)
	if err != nil {
		return nil, fmt.Errorf("%w: booking.rooms: %v", ErrInvalidConfig, err)
	}
	return catalog, nil
}

// TrustedProxyPrefixes разбирает trusted_proxies; одиночный адрес становится подсетью /32 (/128)
func (b BookingConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(b.TrustedProxies))
	for i, raw := range b.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: booking.trusted_proxies[%d]: %v", ErrInvalidConfig, i, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: booking.trusted_proxies[%d]: %v", ErrInvalidConfig, i, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// MaintenanceWindows разбирает окна обслуживания
func (b BookingConfig) MaintenanceWindows() ([]domain.TimeSlot, error) {
	windows := make([]domain.TimeSlot, 0, len(b.Maintenance))
	for i, w := range b.Maintenance {
		from, err := types.NewTimeStringFromString(w.From)
		if err != nil {
			return nil, fmt.Errorf("%w: booking.maintenance[%d].from: %v", ErrInvalidConfig, i, err)
		}
		to, err := types.NewTimeStringFromString(w.To)
		if err != nil {
			return nil, fmt.Errorf("%w: booking.maintenance[%d].to: %v", ErrInvalidConfig, i, err)
		}
		slot, err := domain.NewTimeSlot(from, to)
		if err != nil {
			return nil, fmt.Errorf("%w: booking.maintenance[%d]: %v", ErrInvalidConfig, i, err)
		}
		windows = append(windows, slot)
	}

	// Окно, пересекающее предыдущее, не поместится ни в один свободный интервал
	// и часть простоя останется доступной для бронирования
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].Less(windows[j]) })
	for i := 1; i < len(windows); i++ {
		if windows[i-1].To.IsAfter(windows[i].From) {
			return nil, fmt.Errorf("%w: booking.maintenance: windows %s and %s overlap",
				ErrInvalidConfig, windows[i-1], windows[i])
		}
	}
	return windows, nil
}
