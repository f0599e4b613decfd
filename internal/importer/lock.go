package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/salesdash/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	importLockKey      = "salesdash:import:lock"
	defaultLockTTL     = 30 * time.Minute
	lockReleaseTimeout = 5 * time.Second
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// ErrImportInProgress is returned when another import holds the lock.
var ErrImportInProgress = errors.New("import_in_progress")

// ImportLock serializes imports across processes. A nil or disabled lock
// lets every caller through.
type ImportLock struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	log    *zap.Logger
}

type LockParams struct {
	fx.In

	Lc     fx.Lifecycle `optional:"true"`
	Config config.Config
	Log    *zap.Logger
}

func NewImportLock(p LockParams) *ImportLock {
	log := p.Log.Named("importer.lock")
	ttl := p.Config.Import.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	lock := &ImportLock{ttl: ttl, log: log}
	if !p.Config.Redis.Enabled() {
		return lock
	}

	lock.client = redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(p.Config.Redis.Addr),
		Password: strings.TrimSpace(p.Config.Redis.Password),
		DB:       p.Config.Redis.DB,
	})
	lock.script = redis.NewScript(lockReleaseScript)
	if p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return lock.client.Close()
			},
		})
	}
	return lock
}

func (l *ImportLock) Enabled() bool {
	return l != nil && l.client != nil
}

// Acquire takes the lock or returns ErrImportInProgress. The returned release
// func only deletes the key while it still holds this caller's token.
func (l *ImportLock) Acquire(ctx context.Context) (func(), error) {
	if !l.Enabled() {
		if l != nil && l.log != nil {
			l.log.Info("redis not configured, running unlocked")
		}
		return func() {}, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, importLockKey, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrImportInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if err := l.script.Run(ctx, l.client, []string{importLockKey}, token).Err(); err != nil {
			l.log.Warn("release import lock", zap.Error(err))
		}
	}, nil
}
