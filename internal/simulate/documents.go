package simulate

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var statuses = []string{"active", "inactive", "pending"}

func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func randomStatus() string {
	return statuses[rand.Intn(len(statuses))]
}

// randomDocument produces one filler document with enough variety and
// bulk that scans and aggregations over the collection cost real work.
func randomDocument() bson.M {
	tags := make([]string, 1+rand.Intn(10))
	for i := range tags {
		tags[i] = randomString(10)
	}
	return bson.M{
		"name":    randomString(50),
		"email":   fmt.Sprintf("%s@example.com", randomString(10)),
		"age":     18 + rand.Intn(63),
		"balance": rand.Float64() * 100000,
		"status":  randomStatus(),
		"tags":    tags,
		"metadata": bson.M{
			"created_at": time.Now(),
			"updated_at": time.Now(),
			"version":    1 + rand.Intn(100),
			"data":       randomString(500),
		},
		"description": randomString(1000),
	}
}

func randomDocuments(count int) []any {
	docs := make([]any, count)
	for i := range docs {
		docs[i] = randomDocument()
	}
	return docs
}
