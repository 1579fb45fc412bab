package benchmark

import (
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/coregx/quill/internal/core"
)

var benchFilter = core.Filter{
	"status": "active",
	"age":    core.Filter{"$gte": 18, "$lt": 65},
	"$or": []core.Filter{
		{"role": core.Filter{"$in": []string{"admin", "owner"}}},
		{"score": core.Filter{"$between": []interface{}{1.5, 9.5}}},
	},
}

func BenchmarkEncode(b *testing.B) {
	values := map[string]interface{}{
		"Int32":    42,
		"Int64":    int64(1) << 40,
		"Float64":  3.14,
		"String":   "hello",
		"Flag":     true,
		"DateTime": time.Unix(1700000000, 0),
		"Array":    []string{"a", "b", "c"},
		"JSON":     map[string]interface{}{"k": "v"},
	}
	for name, v := range values {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = core.Encode(v)
			}
		})
	}
}

func BenchmarkCompile(b *testing.B) {
	b.Run("Filter", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = core.Compile(benchFilter)
		}
	})

	b.Run("Document", func(b *testing.B) {
		doc := core.Document(bson.D{
			{Key: "status", Value: "active"},
			{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
			{Key: "$not", Value: bson.D{{Key: "role", Value: "guest"}}},
		})
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = core.Compile(doc)
		}
	})

	b.Run("Tree", func(b *testing.B) {
		tree := core.And(
			core.Eq("status", "active"),
			core.Or(core.Gt("age", 18), core.IsNull("age")),
			core.Not(core.Like("name", "%bot%")),
		)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = core.Compile(tree)
		}
	})
}

func BenchmarkSelectQuery(b *testing.B) {
	b.Run("SimpleSelect", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = core.NewBuilder().Select("id", "name").From("items").Build()
		}
	})

	b.Run("FilteredSelect", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = core.NewBuilder().
				Select("id", "name").
				From("items").
				Final().
				Where(benchFilter).
				OrderBy("id", core.Desc).
				Limit(100).
				Build()
		}
	})

	b.Run("Parallel", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, _ = core.NewBuilder().Select("*").From("items").Where(benchFilter).Build()
			}
		})
	})
}

func BenchmarkInsertStatement(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		records := make([]map[string]interface{}, size)
		for i := range records {
			records[i] = map[string]interface{}{"id": i, "name": "item", "active": i%2 == 0}
		}
		b.Run(fmt.Sprintf("Rows%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = core.InsertStatement("items", records)
			}
		})
	}
}

