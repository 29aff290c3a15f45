// Package redis connects to the Redis server that can back the per-tab
// session id store when tabs are served by more than one process.
//
//	cfg := redis.DefaultConfig()
//	cfg.ConnectionURL = "redis://localhost:6379/0"
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := tabstore.NewRedisStore(client, tabstore.WithTTL(24*time.Hour))
package redis
