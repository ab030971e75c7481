// Package mongo manages the MongoDB connection: environment configuration,
// connecting with retries and a ping-based health check.
//
//	cfg := mongo.Config{ConnectionURL: "mongodb://localhost:27017/cernol"}
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
//	check := mongo.Healthcheck(db.Client())
//
// Connection failures are reported as ErrFailedToConnectToMongo joined with
// the driver error, so errors.Is works on both.
package mongo
