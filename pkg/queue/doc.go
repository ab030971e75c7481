// Package queue is a small durable task queue used for deferred work such as
// sending notification emails outside the request path.
//
// Three pieces cooperate through narrow repository interfaces:
//
//   - Enqueuer stores JSON-encoded payloads as pending tasks.
//   - Worker claims due tasks, runs the registered Handler and records the outcome.
//   - A storage backend (MemoryStorage or RedisStorage) keeps task state.
//
// # Retries
//
// Every claim counts as an attempt. A failing handler is retried after
// Backoff(base, attempt), that is base, 2*base, 4*base and so on, until the
// task's MaxAttempts is used up; then the task is recorded as failed. Handlers
// can inspect the current attempt with TaskInfoFromContext and run their own
// cleanup when TaskInfo.Final reports the last attempt.
//
// # Usage
//
//	type WelcomePayload struct {
//		ContactID string `json:"contact_id"`
//	}
//
//	storage := queue.NewRedisStorage(client, "app:queue")
//	enq, _ := queue.NewEnqueuer(storage)
//	_, err := enq.Enqueue(ctx, WelcomePayload{ContactID: id}, queue.WithTaskName("welcome"))
//
//	w, _ := queue.NewWorker(storage, queue.WithMaxConcurrentTasks(5))
//	w.RegisterHandlers(queue.NewTaskHandler("welcome", func(ctx context.Context, p WelcomePayload) error {
//		return send(ctx, p.ContactID)
//	}))
//	g.Go(w.Run(ctx))
//
// Stale locks left behind by a crashed worker are released on the next poll
// of any worker serving the same queue.
package queue
