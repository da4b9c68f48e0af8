// Package retry implements bounded exponential backoff for establishing the
// warehouse connection.
//
// It is deliberately narrow: only the connect phase is retried, and only
// when the configuration asks for it (connect_retries > 0). Statements are
// never retried, because a COPY or UPSERT that failed half-way must be
// inspected by a human rather than replayed.
//
//	exec := retry.NewExecutor(retry.NewConnectErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    conn, err = pgx.ConnectConfig(ctx, cfg)
//	    return err
//	})
package retry
