// Package redis connects to Redis with retries and exposes a health check.
//
// Configuration comes from the environment through Config: either a single
// REDIS_URL or the REDIS_HOST, REDIS_PORT, REDIS_PASSWORD and REDIS_DB quartet.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	check := redis.Healthcheck(client)
package redis
