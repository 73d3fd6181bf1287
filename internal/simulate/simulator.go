// Package simulate generates database workloads that trigger the alert
// conditions this tool configures, for demonstrating that alert
// definitions actually fire. Test and demo use only, never against
// production clusters.
package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/atlasops/atlasalerts/internal/logger"
)

// Scenario names accepted by Run.
const (
	ScenarioCPU            = "cpu"
	ScenarioQueryTargeting = "query-targeting"
	ScenarioConnections    = "connections"
	ScenarioWriteLoad      = "write-load"
	ScenarioReadLoad       = "read-load"
	ScenarioAll            = "all"
)

const (
	databaseName   = "alert_simulator_test"
	collectionName = "test_data"

	connectTimeout  = 10 * time.Second
	insertBatchSize = 1000
)

// Scenarios lists every runnable scenario name.
func Scenarios() []string {
	return []string{
		ScenarioCPU, ScenarioQueryTargeting, ScenarioConnections,
		ScenarioWriteLoad, ScenarioReadLoad, ScenarioAll,
	}
}

// Options tunes a simulation run.
type Options struct {
	// Duration is how long each scenario sustains its load.
	Duration time.Duration
	// MaxConnections applies to the connections scenario.
	MaxConnections int
}

// withDefaults fills unset knobs with the standard run values.
func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = time.Minute
	}
	if o.MaxConnections <= 0 {
		o.MaxConnections = 50
	}
	return o
}

// Simulator drives load scenarios against one cluster.
type Simulator struct {
	client *mongo.Client
	uri    string
	log    logger.Logger
}

// Connect establishes and verifies the cluster connection.
func Connect(ctx context.Context, uri string, log logger.Logger) (*Simulator, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("cluster is unreachable: %w", err)
	}
	log.Info("connected to cluster")
	return &Simulator{client: client, uri: uri, log: log}, nil
}

// Close disconnects from the cluster.
func (s *Simulator) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Run executes the named scenario, or every scenario in sequence for
// ScenarioAll.
func (s *Simulator) Run(ctx context.Context, scenario string, opts Options) error {
	opts = opts.withDefaults()

	switch scenario {
	case ScenarioCPU:
		return s.cpuLoad(ctx, opts.Duration)
	case ScenarioQueryTargeting:
		return s.queryTargeting(ctx, opts.Duration)
	case ScenarioConnections:
		return s.connections(ctx, opts.MaxConnections, opts.Duration)
	case ScenarioWriteLoad:
		return s.writeLoad(ctx, opts.Duration)
	case ScenarioReadLoad:
		return s.readLoad(ctx, opts.Duration)
	case ScenarioAll:
		for _, name := range []string{
			ScenarioCPU, ScenarioQueryTargeting, ScenarioConnections,
			ScenarioWriteLoad, ScenarioReadLoad,
		} {
			if err := s.Run(ctx, name, opts); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown scenario %q", scenario)
	}
}

// Cleanup drops the simulation database.
func (s *Simulator) Cleanup(ctx context.Context) error {
	s.log.Info("cleaning up simulation data", logger.String("database", databaseName))
	if err := s.client.Database(databaseName).Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop %s: %w", databaseName, err)
	}
	return nil
}

func (s *Simulator) collection() *mongo.Collection {
	return s.client.Database(databaseName).Collection(collectionName)
}

// cpuLoad runs compute-heavy aggregations, pushing CPU (User) % alerts.
func (s *Simulator) cpuLoad(ctx context.Context, duration time.Duration) error {
	s.log.Info("starting cpu load scenario", logger.String("duration", duration.String()))
	coll := s.collection()

	if err := s.seedDocuments(ctx, coll, 10000); err != nil {
		return err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: 20}}}}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "computed1", Value: bson.D{{Key: "$multiply", Value: bson.A{"$balance", "$age"}}}},
			{Key: "computed2", Value: bson.D{{Key: "$concat", Value: bson.A{"$name", " - ", "$email"}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$balance"}}},
			{Key: "avg_age", Value: bson.D{{Key: "$avg", Value: "$age"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
	}

	deadline := time.Now().Add(duration)
	iterations := 0
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		cursor, err := coll.Aggregate(ctx, pipeline)
		if err != nil {
			s.log.Warn("aggregation failed", logger.Error(err))
			continue
		}
		var results []bson.M
		if err := cursor.All(ctx, &results); err != nil {
			s.log.Warn("aggregation cursor failed", logger.Error(err))
		}
		iterations++
		if iterations%100 == 0 {
			s.log.Info("cpu load progress", logger.Int("aggregations", iterations))
		}
	}
	s.log.Info("cpu load scenario complete", logger.Int("aggregations", iterations))
	return nil
}

// queryTargeting runs unindexed queries so the scanned/returned ratio
// climbs past the query targeting thresholds.
func (s *Simulator) queryTargeting(ctx context.Context, duration time.Duration) error {
	s.log.Info("starting query targeting scenario", logger.String("duration", duration.String()))
	coll := s.collection()

	if err := s.dropSecondaryIndexes(ctx, coll); err != nil {
		return err
	}
	if err := s.seedDocuments(ctx, coll, 50000); err != nil {
		return err
	}

	deadline := time.Now().Add(duration)
	queries := 0
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		filters := []bson.D{
			{{Key: "balance", Value: bson.D{{Key: "$gt", Value: rand.Float64() * 50000}}}},
			{{Key: "age", Value: bson.D{{Key: "$lt", Value: 30 + rand.Intn(30)}}}},
			{{Key: "status", Value: randomStatus()}},
			{{Key: "metadata.version", Value: 1 + rand.Intn(50)}},
		}
		for _, filter := range filters {
			// Low limit ensures far more documents are scanned than returned.
			cursor, err := coll.Find(ctx, filter, options.Find().SetLimit(5))
			if err != nil {
				s.log.Warn("query failed", logger.Error(err))
				continue
			}
			var results []bson.M
			_ = cursor.All(ctx, &results)
			queries++
		}
		if queries%500 < len(filters) {
			s.log.Info("query targeting progress", logger.Int("queries", queries))
		}
	}
	s.log.Info("query targeting scenario complete", logger.Int("queries", queries))
	return nil
}

// connections opens and holds many client connections to approach the
// configured connection limit.
func (s *Simulator) connections(ctx context.Context, maxConnections int, duration time.Duration) error {
	s.log.Info("starting connections scenario",
		logger.Int("connections", maxConnections),
		logger.String("duration", duration.String()))

	var mu sync.Mutex
	clients := make([]*mongo.Client, 0, maxConnections)
	var wg sync.WaitGroup
	for i := 0; i < maxConnections; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			client, err := mongo.Connect(ctx, options.Client().
				ApplyURI(s.uri).
				SetServerSelectionTimeout(5*time.Second).
				SetMaxPoolSize(1))
			if err != nil {
				s.log.Warn("connection failed", logger.Int("connection", id), logger.Error(err))
				return
			}
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				s.log.Warn("connection ping failed", logger.Int("connection", id), logger.Error(err))
				_ = client.Disconnect(ctx)
				return
			}
			mu.Lock()
			clients = append(clients, client)
			mu.Unlock()
		}(i + 1)
		// Stagger connection attempts.
		time.Sleep(100 * time.Millisecond)
	}
	wg.Wait()

	s.log.Info("holding connections", logger.Int("established", len(clients)))
	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}

	for _, client := range clients {
		_ = client.Disconnect(context.WithoutCancel(ctx))
	}
	s.log.Info("connections scenario complete")
	return ctx.Err()
}

// writeLoad sustains batched inserts, updates, and deletes, pushing disk
// write IOPS, write latency, and writer queue alerts.
func (s *Simulator) writeLoad(ctx context.Context, duration time.Duration) error {
	s.log.Info("starting write load scenario", logger.String("duration", duration.String()))
	coll := s.collection()

	deadline := time.Now().Add(duration)
	writes := 0
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs := randomDocuments(100)
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			s.log.Warn("insert failed", logger.Error(err))
			continue
		}
		writes += len(docs)

		if _, err := coll.UpdateMany(ctx,
			bson.D{{Key: "status", Value: "active"}},
			bson.D{
				{Key: "$inc", Value: bson.D{{Key: "metadata.version", Value: 1}}},
				{Key: "$set", Value: bson.D{{Key: "metadata.updated_at", Value: time.Now()}}},
			}); err != nil {
			s.log.Warn("update failed", logger.Error(err))
		}

		// Keep the collection from growing without bound.
		if writes > 50000 {
			if _, err := coll.DeleteMany(ctx, bson.D{{Key: "age", Value: bson.D{{Key: "$lt", Value: 25}}}}); err != nil {
				s.log.Warn("delete failed", logger.Error(err))
			}
		}
		if writes%5000 == 0 {
			s.log.Info("write load progress", logger.Int("writes", writes))
		}
	}
	s.log.Info("write load scenario complete", logger.Int("writes", writes))
	return nil
}

// readLoad sustains point reads and range scans, pushing disk read IOPS,
// read latency, and reader queue alerts.
func (s *Simulator) readLoad(ctx context.Context, duration time.Duration) error {
	s.log.Info("starting read load scenario", logger.String("duration", duration.String()))
	coll := s.collection()

	count, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if count < 10000 {
		if err := s.seedDocuments(ctx, coll, 10000); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(duration)
	reads := 0
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i < 100; i++ {
			var doc bson.M
			err := coll.FindOne(ctx, bson.D{{Key: "age", Value: 18 + rand.Intn(63)}}).Decode(&doc)
			if err != nil && err != mongo.ErrNoDocuments {
				s.log.Warn("read failed", logger.Error(err))
			}
			reads++
		}
		cursor, err := coll.Find(ctx,
			bson.D{{Key: "balance", Value: bson.D{{Key: "$gt", Value: rand.Float64() * 50000}}}},
			options.Find().SetLimit(100))
		if err == nil {
			var results []bson.M
			_ = cursor.All(ctx, &results)
		}
		reads++
		if reads%5000 < 101 {
			s.log.Info("read load progress", logger.Int("reads", reads))
		}
	}
	s.log.Info("read load scenario complete", logger.Int("reads", reads))
	return nil
}

func (s *Simulator) seedDocuments(ctx context.Context, coll *mongo.Collection, total int) error {
	s.log.Info("seeding test documents", logger.Int("count", total))
	for inserted := 0; inserted < total; inserted += insertBatchSize {
		batch := insertBatchSize
		if remaining := total - inserted; remaining < batch {
			batch = remaining
		}
		if _, err := coll.InsertMany(ctx, randomDocuments(batch)); err != nil {
			return fmt.Errorf("failed to seed documents: %w", err)
		}
	}
	return nil
}

func (s *Simulator) dropSecondaryIndexes(ctx context.Context, coll *mongo.Collection) error {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return fmt.Errorf("failed to read indexes: %w", err)
	}
	for _, index := range indexes {
		name, _ := index["name"].(string)
		if name == "" || name == "_id_" {
			continue
		}
		if _, err := coll.Indexes().DropOne(ctx, name); err != nil {
			return fmt.Errorf("failed to drop index %s: %w", name, err)
		}
	}
	return nil
}
