// Package qdrant provides an EvidenceDB implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/clientpulse/pulse-core/internal/domain/entities"
	"github.com/clientpulse/pulse-core/internal/domain/ports"
	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
)

// Repository implements the EvidenceDB interface using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// Upsert stores evidence items with their embeddings.
func (r *Repository) Upsert(ctx context.Context, evidence []entities.Evidence) error {
	points := make([]*pb.PointStruct, 0, len(evidence))

	for _, ev := range evidence {
		pointID := ev.ID
		if pointID == "" {
			pointID = uuid.New().String()
		}

		point := &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: pointID,
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: ev.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				"tenant_id":   {Kind: &pb.Value_StringValue{StringValue: ev.TenantID}},
				"account_id":  {Kind: &pb.Value_StringValue{StringValue: ev.AccountID}},
				"signal_id":   {Kind: &pb.Value_StringValue{StringValue: ev.SignalID}},
				"theme":       {Kind: &pb.Value_StringValue{StringValue: ev.Theme}},
				"source_type": {Kind: &pb.Value_StringValue{StringValue: string(ev.SourceType)}},
				"text":        {Kind: &pb.Value_StringValue{StringValue: ev.Text}},
				"created_at":  {Kind: &pb.Value_StringValue{StringValue: ev.CreatedAt.Format(time.RFC3339)}},
			},
		}
		points = append(points, point)
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search returns the evidence most similar to the embedding within the
// given scope, best matches first. The tenant filter is always applied;
// account and theme filters narrow further when the scope sets them.
func (r *Repository) Search(ctx context.Context, embedding []float32, scope ports.SearchScope, limit int) ([]entities.Evidence, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         scopeFilter(scope),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToEvidence(resp.Result), nil
}

// Delete removes an evidence item by its ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// scopeFilter builds the permission filter for a search scope.
func scopeFilter(scope ports.SearchScope) *pb.Filter {
	must := []*pb.Condition{
		keywordCondition("tenant_id", scope.TenantID),
	}

	if len(scope.AccountIDs) > 0 {
		must = append(must, &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: "account_id",
					Match: &pb.Match{
						MatchValue: &pb.Match_Keywords{
							Keywords: &pb.RepeatedStrings{Strings: scope.AccountIDs},
						},
					},
				},
			},
		})
	}

	if len(scope.Themes) > 0 {
		must = append(must, &pb.Condition{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: "theme",
					Match: &pb.Match{
						MatchValue: &pb.Match_Keywords{
							Keywords: &pb.RepeatedStrings{Strings: scope.Themes},
						},
					},
				},
			},
		})
	}

	return &pb.Filter{Must: must}
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

// scoredPointsToEvidence converts scored points to evidence items.
func scoredPointsToEvidence(points []*pb.ScoredPoint) []entities.Evidence {
	evidence := make([]entities.Evidence, 0, len(points))

	for _, point := range points {
		id := ""
		if uuid := point.Id.GetUuid(); uuid != "" {
			id = uuid
		}
		payload := point.Payload

		ev := entities.Evidence{
			ID:         id,
			TenantID:   getStringValue(payload, "tenant_id"),
			AccountID:  getStringValue(payload, "account_id"),
			SignalID:   getStringValue(payload, "signal_id"),
			Theme:      getStringValue(payload, "theme"),
			SourceType: entities.SourceType(getStringValue(payload, "source_type")),
			Text:       getStringValue(payload, "text"),
			Score:      float64(point.Score),
		}
		if ts, err := time.Parse(time.RFC3339, getStringValue(payload, "created_at")); err == nil {
			ev.CreatedAt = ts
		}
		evidence = append(evidence, ev)
	}

	return evidence
}

// getStringValue extracts a string payload field.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
