package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pharmaops-api/pkg/config"
)

const (
	defaultMaxConns = 25
	fallbackDNS     = "8.8.8.8:53"
	applicationName = "pharmaops-api"
)

var errNoIPv4 = errors.New("sin dirección IPv4")

// NewPool pool de la API. Los hosts gestionados (Supabase, Neon) suelen publicar AAAA y los
// contenedores sin IPv6 no llegan, así que host y dial se resuelven a IPv4 cuando existe.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	r := newIPv4Resolver(fallbackDNS)
	poolConfig, err := pgxpool.ParseConfig(r.dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	poolConfig.ConnConfig.DialFunc = r.dial
	return openPool(ctx, poolConfig, cfg.MaxConns)
}

// NewPoolFromDSN pool chico sin reescritura IPv4 (tests contra contenedores locales).
func NewPoolFromDSN(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	return openPool(ctx, poolConfig, 4)
}

func openPool(ctx context.Context, poolConfig *pgxpool.Config, maxConns int) (*pgxpool.Pool, error) {
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = min(2, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	// NUMERIC <-> decimal.Decimal en cada conexión nueva.
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// ipv4Resolver busca A records con el resolver del sistema y, si falla, con un DNS público.
type ipv4Resolver struct {
	fallback *net.Resolver
	dialer   net.Dialer
}

func newIPv4Resolver(dnsAddr string) *ipv4Resolver {
	return &ipv4Resolver{
		fallback: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "udp", dnsAddr)
			},
		},
	}
}

func (r *ipv4Resolver) lookup(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", errNoIPv4
		}
		return host, nil
	}
	for _, res := range []*net.Resolver{net.DefaultResolver, r.fallback} {
		ips, err := res.LookupIP(ctx, "ip4", host)
		if err == nil && len(ips) > 0 {
			return ips[0].String(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", errNoIPv4, host)
}

// dial se usa como DialFunc de pgx; sin IPv4 cae al dial normal.
func (r *ipv4Resolver) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := r.lookup(ctx, host)
	if err != nil {
		return r.dialer.DialContext(ctx, network, addr)
	}
	return r.dialer.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// dsn arma el connection string con el host ya resuelto a IPv4 cuando se puede.
func (r *ipv4Resolver) dsn(cfg config.DBConfig) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.DatabaseURL == "" {
		if ip, err := r.lookup(ctx, cfg.Host); err == nil {
			cfg.Host = ip
		}
		return cfg.DSN()
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return cfg.DatabaseURL
	}
	ip, err := r.lookup(ctx, u.Hostname())
	if err != nil {
		return cfg.DatabaseURL
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}
