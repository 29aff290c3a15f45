// Package tabstore remembers which registry session id belongs to a browser
// tab, so a remounted tab reuses its id instead of registering a second
// session.
//
// MemoryStore serves a single process. RedisStore shares ids between
// processes with SETNX, so concurrent first writes still agree on one id:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := tabstore.NewRedisStore(client, tabstore.WithTTL(12*time.Hour))
//	id, created, err := store.SetOnce(ctx, tabID, candidate)
package tabstore
