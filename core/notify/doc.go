// Package notify publishes sync run notifications to RabbitMQ.
//
// Client owns the broker connection and channel and re-dials with backoff when the
// broker drops the connection. Client itself satisfies Channel, so a Publisher built
// over it always uses the current channel. Publisher writes persistent JSON
// messages to a durable topic exchange. Routing keys are built from the configured
// prefix and the job name, e.g. "sync.run.sync_all", so consumers can bind to a
// single job or to "sync.run.#".
//
// # Usage
//
//	client, err := notify.NewClient(cfg.Notify.URL, logger)
//	pub := notify.NewPublisher(client, cfg.Notify.Exchange, logger)
//	_ = pub.DeclareTopology()
//	_ = pub.Publish(ctx, cfg.Notify.RoutingKey("sync_all"), summary)
package notify
