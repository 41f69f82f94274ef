package qdrant

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// fakePoints serves canned scroll pages and records SetPayload calls. Methods
// it does not override panic through the nil embedded interface.
type fakePoints struct {
	pb.PointsClient
	pages     []*pb.ScrollResponse
	offsets   []*pb.PointId
	limits    []uint32
	payloads  []*pb.SetPayloadPoints
	upserts   []*pb.UpsertPoints
	scrollErr error
}

func (f *fakePoints) Scroll(_ context.Context, in *pb.ScrollPoints, _ ...grpc.CallOption) (*pb.ScrollResponse, error) {
	if f.scrollErr != nil {
		return nil, f.scrollErr
	}
	f.offsets = append(f.offsets, in.Offset)
	f.limits = append(f.limits, in.GetLimit())
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakePoints) SetPayload(_ context.Context, in *pb.SetPayloadPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.payloads = append(f.payloads, in)
	return &pb.PointsOperationResponse{}, nil
}

func (f *fakePoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.upserts = append(f.upserts, in)
	return &pb.PointsOperationResponse{}, nil
}

// fakeCollections reports an existing collection of the given size, or a
// missing one when size is 0.
type fakeCollections struct {
	pb.CollectionsClient
	size    uint64
	created []*pb.CreateCollection
}

func (f *fakeCollections) Get(_ context.Context, _ *pb.GetCollectionInfoRequest, _ ...grpc.CallOption) (*pb.GetCollectionInfoResponse, error) {
	if f.size == 0 {
		return nil, errors.New("not found")
	}
	return &pb.GetCollectionInfoResponse{Result: &pb.CollectionInfo{Config: &pb.CollectionConfig{
		Params: &pb.CollectionParams{VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{Size: f.size}},
		}},
	}}}, nil
}

func (f *fakeCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.created = append(f.created, in)
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func retrieved(id *pb.PointId, text string) *pb.RetrievedPoint {
	return &pb.RetrievedPoint{
		Id:      id,
		Payload: map[string]*pb.Value{textKey: {Kind: &pb.Value_StringValue{StringValue: text}}},
	}
}

func TestGetAll_FollowsPages(t *testing.T) {
	second := toPointID("00000000-0000-0000-0000-000000000002")
	fake := &fakePoints{
		pages: []*pb.ScrollResponse{
			{
				Result:         []*pb.RetrievedPoint{retrieved(toPointID("00000000-0000-0000-0000-000000000001"), "one")},
				NextPageOffset: second,
			},
			{
				Result: []*pb.RetrievedPoint{retrieved(second, "two"), retrieved(toPointID("7"), "seven")},
			},
		},
	}
	client := &Client{pointsClient: fake, collectionName: "test"}

	points, err := client.GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[1].Text != "two" || points[2].ID != "7" {
		t.Errorf("unexpected points %+v", points)
	}
	if len(fake.offsets) != 2 || fake.offsets[0] != nil || fake.offsets[1] != second {
		t.Errorf("unexpected scroll offsets %v", fake.offsets)
	}
	for _, limit := range fake.limits {
		if limit != scrollPageSize {
			t.Errorf("expected page limit %d, got %d", scrollPageSize, limit)
		}
	}
}

func TestGetAll_ScrollError(t *testing.T) {
	client := &Client{pointsClient: &fakePoints{scrollErr: errors.New("unavailable")}}

	if _, err := client.GetAll(context.Background()); err == nil {
		t.Error("expected error from failed scroll")
	}
}

func TestSetCoordinates(t *testing.T) {
	fake := &fakePoints{}
	client := &Client{pointsClient: fake, collectionName: "test"}

	err := client.SetCoordinates(context.Background(), "42", []float64{0.5, -1.25}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.payloads) != 1 {
		t.Fatalf("expected 1 SetPayload call, got %d", len(fake.payloads))
	}
	request := fake.payloads[0]
	if request.CollectionName != "test" {
		t.Errorf("unexpected collection %q", request.CollectionName)
	}

	values := request.Payload[CoordinatesKey].GetListValue().GetValues()
	if len(values) != 2 || values[1].GetDoubleValue() != -1.25 {
		t.Errorf("unexpected coordinates payload %v", values)
	}
	if cluster := request.Payload[ClusterKey].GetIntegerValue(); cluster != 3 {
		t.Errorf("expected cluster 3, got %d", cluster)
	}

	ids := request.PointsSelector.GetPoints().GetIds()
	if len(ids) != 1 || ids[0].GetNum() != 42 {
		t.Errorf("unexpected selector %v", ids)
	}
}

func TestPointIDRoundTrip(t *testing.T) {
	tests := []string{"12", "5f1c9a8e-7b3d-4c2e-9f10-2a6b8d4e0c11"}

	for _, id := range tests {
		if got := fromPointID(toPointID(id)); got != id {
			t.Errorf("round trip %q: got %q", id, got)
		}
	}
}

func TestEnsureCollectionExists_AdoptsExistingSize(t *testing.T) {
	collections := &fakeCollections{size: 2}
	client := &Client{collectionsClient: collections, collectionName: "test", vectorSize: 768}

	if err := client.ensureCollectionExists(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.VectorSize() != 2 {
		t.Errorf("expected vector size 2 from existing collection, got %d", client.VectorSize())
	}
	if len(collections.created) != 0 {
		t.Error("existing collection should not be recreated")
	}
}

func TestEnsureCollectionExists_CreatesWithRequestedSize(t *testing.T) {
	collections := &fakeCollections{}
	client := &Client{collectionsClient: collections, collectionName: "test", vectorSize: 3}

	if err := client.ensureCollectionExists(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(collections.created) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(collections.created))
	}
	if size := collections.created[0].GetVectorsConfig().GetParams().GetSize(); size != 3 {
		t.Errorf("expected collection size 3, got %d", size)
	}
}

func TestUpsert_RejectsDimensionMismatch(t *testing.T) {
	fake := &fakePoints{}
	client := &Client{pointsClient: fake, collectionName: "test", vectorSize: 768}

	if err := client.Upsert(context.Background(), "1", "short", []float32{1, 2}); err == nil {
		t.Error("expected error for 2-dimensional vector in a 768-dimensional collection")
	}
	if len(fake.upserts) != 0 {
		t.Error("mismatched vector should not reach the server")
	}

	if err := client.Upsert(context.Background(), "2", "ok", make([]float32, 768)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.upserts) != 1 {
		t.Errorf("expected 1 upsert, got %d", len(fake.upserts))
	}
}
