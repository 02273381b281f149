package distributed

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDB is an in-memory stand-in for DDBClient, keyed the same way a
// real table would be: (cluster_id, node_id).
type fakeDDB struct {
	rows map[string]map[string]types.AttributeValue
}

func newFakeDDB() *fakeDDB { return &fakeDDB{rows: make(map[string]map[string]types.AttributeValue)} }

func rowKey(item map[string]types.AttributeValue) string {
	cid := item["cluster_id"].(*types.AttributeValueMemberS).Value
	nid := item["node_id"].(*types.AttributeValueMemberN).Value
	return cid + "/" + nid
}

func (f *fakeDDB) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.rows[rowKey(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	cid := in.ExpressionAttributeValues[":cid"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, row := range f.rows {
		if row["cluster_id"].(*types.AttributeValueMemberS).Value == cid {
			items = append(items, row)
		}
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *fakeDDB) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	cid := in.Key["cluster_id"].(*types.AttributeValueMemberS).Value
	nid := in.Key["node_id"].(*types.AttributeValueMemberN).Value
	delete(f.rows, cid+"/"+nid)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestNodeRegistry_HeartbeatAndMembers(t *testing.T) {
	client := newFakeDDB()
	reg := NewNodeRegistry(client, "gicops-nodes", "cluster-a")

	require.NoError(t, reg.Heartbeat(context.Background(), 0, "10.0.0.1:9000"))
	require.NoError(t, reg.Heartbeat(context.Background(), 1, "10.0.0.2:9000"))

	members, err := reg.Members(context.Background())
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestNodeRegistry_DeregisterRemoves(t *testing.T) {
	client := newFakeDDB()
	reg := NewNodeRegistry(client, "gicops-nodes", "cluster-a")
	require.NoError(t, reg.Heartbeat(context.Background(), 0, "10.0.0.1:9000"))
	require.NoError(t, reg.Deregister(context.Background(), 0))

	members, err := reg.Members(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestNodeRegistry_StaleHeartbeatExcluded(t *testing.T) {
	client := newFakeDDB()
	reg := NewNodeRegistry(client, "gicops-nodes", "cluster-a")
	reg.StaleAfter = 1 * time.Millisecond

	require.NoError(t, reg.Heartbeat(context.Background(), 0, "10.0.0.1:9000"))
	time.Sleep(5 * time.Millisecond)

	members, err := reg.Members(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestNodeRegistry_ClustersAreIsolated(t *testing.T) {
	client := newFakeDDB()
	regA := NewNodeRegistry(client, "gicops-nodes", "cluster-a")
	regB := NewNodeRegistry(client, "gicops-nodes", "cluster-b")

	require.NoError(t, regA.Heartbeat(context.Background(), 0, "a:9000"))
	require.NoError(t, regB.Heartbeat(context.Background(), 0, "b:9000"))

	membersA, err := regA.Members(context.Background())
	require.NoError(t, err)
	require.Len(t, membersA, 1)
	assert.Equal(t, "a:9000", membersA[0].Address)
}
