package service

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"
)

// TokenPurger is satisfied by repository.TokenRepo.
type TokenPurger interface {
    PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunTokenJanitor deletes expired refresh tokens every interval until ctx
// is cancelled.  Tokens are kept for a day past expiry.
func RunTokenJanitor(ctx context.Context, p TokenPurger, every time.Duration, log *logrus.Logger) {
    t := time.NewTicker(every)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case now := <-t.C:
            n, err := p.PurgeExpired(ctx, now.Add(-24*time.Hour))
            if err != nil {
                log.WithError(err).Warn("token janitor: purge failed")
                continue
            }
            if n > 0 {
                log.WithField("deleted", n).Info("token janitor: purged expired refresh tokens")
            }
        }
    }
}
