// Package qdrant provides a gRPC client for a Qdrant vector database. It reads
// point sets out of a collection and writes diffusion coordinates back onto
// the points as payload.
package qdrant

import (
	"context"
	"fmt"
	"strconv"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Payload keys written by SetCoordinates.
const (
	CoordinatesKey = "diffusion"
	ClusterKey     = "cluster"
	textKey        = "text"
)

// scrollPageSize is the number of points requested per Scroll call.
const scrollPageSize = 256

// Client wraps gRPC connections to a Qdrant vector database instance.
type Client struct {
	connection        *grpc.ClientConn
	pointsClient      pb.PointsClient
	collectionsClient pb.CollectionsClient
	collectionName    string
	vectorSize        uint64
}

// Point is a stored vector with its ID and text payload.
type Point struct {
	ID     string
	Text   string
	Vector []float32
}

// NewClient connects to address and makes sure the collection exists,
// creating it with cosine distance if necessary.
func NewClient(address, collectionName string, vectorSize uint64) (*Client, error) {
	connection, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	client := &Client{
		connection:        connection,
		pointsClient:      pb.NewPointsClient(connection),
		collectionsClient: pb.NewCollectionsClient(connection),
		collectionName:    collectionName,
		vectorSize:        vectorSize,
	}

	if err := client.ensureCollectionExists(context.Background()); err != nil {
		connection.Close()
		return nil, err
	}

	return client, nil
}

// ensureCollectionExists creates the collection when it is missing. An
// existing collection keeps its own vector size, which replaces the
// requested one.
func (client *Client) ensureCollectionExists(ctx context.Context) error {
	info, err := client.collectionsClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: client.collectionName,
	})
	if err == nil {
		if size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize(); size != 0 {
			client.vectorSize = size
		}
		return nil
	}

	_, err = client.collectionsClient.Create(ctx, &pb.CreateCollection{
		CollectionName: client.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     client.vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

// VectorSize returns the vector dimension of the collection.
func (client *Client) VectorSize() uint64 {
	return client.vectorSize
}

// Upsert inserts or updates a point identified by a UUID. The vector must
// match the collection's dimension.
func (client *Client) Upsert(ctx context.Context, pointID string, text string, vector []float32) error {
	if uint64(len(vector)) != client.vectorSize {
		return fmt.Errorf("point %s has dimension %d, collection %q holds %d", pointID, len(vector), client.collectionName, client.vectorSize)
	}

	pointToUpsert := &pb.PointStruct{
		Id: toPointID(pointID),
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: vector},
			},
		},
		Payload: map[string]*pb.Value{
			textKey: {Kind: &pb.Value_StringValue{StringValue: text}},
		},
	}

	_, err := client.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: client.collectionName,
		Points:         []*pb.PointStruct{pointToUpsert},
	})
	if err != nil {
		return fmt.Errorf("upsert point %s: %w", pointID, err)
	}
	return nil
}

// GetAll retrieves every point in the collection, following scroll pages
// until the server reports no next page.
func (client *Client) GetAll(ctx context.Context) ([]Point, error) {
	var points []Point
	var offset *pb.PointId
	pageSize := uint32(scrollPageSize)

	for {
		scrollResponse, err := client.pointsClient.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: client.collectionName,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
			Limit:          &pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}

		for _, retrievedPoint := range scrollResponse.Result {
			var textContent string
			if textPayload, exists := retrievedPoint.Payload[textKey]; exists {
				textContent = textPayload.GetStringValue()
			}

			var embeddingVector []float32
			if vectorData := retrievedPoint.Vectors.GetVector(); vectorData != nil {
				embeddingVector = vectorData.Data
			}

			points = append(points, Point{
				ID:     fromPointID(retrievedPoint.Id),
				Text:   textContent,
				Vector: embeddingVector,
			})
		}

		offset = scrollResponse.NextPageOffset
		if offset == nil || len(scrollResponse.Result) == 0 {
			return points, nil
		}
	}
}

// SetCoordinates stores a point's diffusion coordinates and cluster label as
// payload, leaving its vector and other payload keys untouched.
func (client *Client) SetCoordinates(ctx context.Context, pointID string, coordinates []float64, cluster int) error {
	_, err := client.pointsClient.SetPayload(ctx, &pb.SetPayloadPoints{
		CollectionName: client.collectionName,
		Payload:        coordinatesPayload(coordinates, cluster),
		PointsSelector: pointSelector(pointID),
	})
	if err != nil {
		return fmt.Errorf("set payload on %s: %w", pointID, err)
	}
	return nil
}

// Delete removes a point from the collection.
func (client *Client) Delete(ctx context.Context, pointID string) error {
	_, err := client.pointsClient.Delete(ctx, &pb.DeletePoints{
		CollectionName: client.collectionName,
		Points:         pointSelector(pointID),
	})
	return err
}

// Close terminates the gRPC connection to the Qdrant server.
func (client *Client) Close() error {
	return client.connection.Close()
}

func coordinatesPayload(coordinates []float64, cluster int) map[string]*pb.Value {
	values := make([]*pb.Value, len(coordinates))
	for i, c := range coordinates {
		values[i] = &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: c}}
	}
	return map[string]*pb.Value{
		CoordinatesKey: {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}},
		ClusterKey:     {Kind: &pb.Value_IntegerValue{IntegerValue: int64(cluster)}},
	}
}

func pointSelector(pointID string) *pb.PointsSelector {
	return &pb.PointsSelector{
		PointsSelectorOneOf: &pb.PointsSelector_Points{
			Points: &pb.PointsIdsList{Ids: []*pb.PointId{toPointID(pointID)}},
		},
	}
}

// toPointID maps a string ID to Qdrant's numeric or UUID form.
func toPointID(pointID string) *pb.PointId {
	if num, err := strconv.ParseUint(pointID, 10, 64); err == nil {
		return &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: num}}
	}
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID}}
}

func fromPointID(id *pb.PointId) string {
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	if _, ok := id.GetPointIdOptions().(*pb.PointId_Num); ok {
		return strconv.FormatUint(id.GetNum(), 10)
	}
	return ""
}
