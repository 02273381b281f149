package distributed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API the node registry needs.
// Grounded on blobstore/s3's DDBCommitStore, which uses the same
// interface shape to make its commit log over DynamoDB's conditional
// writes testable without a live table.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Member is one row of the node registry: a live participant in the
// `nodes`/`myid` topology, with the address other nodes should dial to
// reach it and the last time it renewed its lease.
type Member struct {
	NodeID        int
	Address       string
	LastHeartbeat time.Time
}

// NodeRegistry tracks which nodes are currently participating in a search
// cluster, keyed by cluster id, using DynamoDB as the shared coordination
// point in place of a static `nodes`/`myid` file. Each node renews a
// heartbeat lease; a node missing for longer than StaleAfter is considered
// departed and excluded from Members.
//
// Table schema (partition key cluster_id, sort key node_id):
//
//	aws dynamodb create-table \
//	  --table-name gicops-nodes \
//	  --attribute-definitions AttributeName=cluster_id,AttributeType=S AttributeName=node_id,AttributeType=N \
//	  --key-schema AttributeName=cluster_id,KeyType=HASH AttributeName=node_id,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type NodeRegistry struct {
	client    DDBClient
	tableName string
	clusterID string

	// StaleAfter is the lease duration; Members omits rows whose
	// heartbeat is older than this. Zero disables staleness filtering.
	StaleAfter time.Duration
}

// NewNodeRegistry returns a registry for clusterID backed by tableName.
func NewNodeRegistry(client DDBClient, tableName, clusterID string) *NodeRegistry {
	return &NodeRegistry{
		client:     client,
		tableName:  tableName,
		clusterID:  clusterID,
		StaleAfter: 30 * time.Second,
	}
}

// Heartbeat upserts this node's row with the current time, renewing its
// lease. Call it periodically from the node's main loop; a missed
// heartbeat is how a crashed node's spectra get reassigned by a later
// Owner recomputation over the surviving Members.
func (r *NodeRegistry) Heartbeat(ctx context.Context, nodeID int, address string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"cluster_id": &types.AttributeValueMemberS{Value: r.clusterID},
			"node_id":    &types.AttributeValueMemberN{Value: strconv.Itoa(nodeID)},
			"address":    &types.AttributeValueMemberS{Value: address},
			"heartbeat":  &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("distributed: heartbeat for node %d: %w", nodeID, err)
	}
	return nil
}

// Deregister removes this node's row, signalling a clean departure rather
// than a crash (Members would otherwise keep it until StaleAfter elapses).
func (r *NodeRegistry) Deregister(ctx context.Context, nodeID int) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"cluster_id": &types.AttributeValueMemberS{Value: r.clusterID},
			"node_id":    &types.AttributeValueMemberN{Value: strconv.Itoa(nodeID)},
		},
	})
	if err != nil {
		return fmt.Errorf("distributed: deregister node %d: %w", nodeID, err)
	}
	return nil
}

// Members lists the currently live nodes in the cluster, sorted by node
// id, excluding any row whose heartbeat has exceeded StaleAfter.
func (r *NodeRegistry) Members(ctx context.Context) ([]Member, error) {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("cluster_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: r.clusterID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("distributed: query members: %w", err)
	}

	now := time.Now()
	members := make([]Member, 0, len(resp.Items))
	for _, item := range resp.Items {
		m, err := decodeMember(item)
		if err != nil {
			return nil, err
		}
		if r.StaleAfter > 0 && now.Sub(m.LastHeartbeat) > r.StaleAfter {
			continue
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].NodeID < members[j].NodeID })
	return members, nil
}

func decodeMember(item map[string]types.AttributeValue) (Member, error) {
	nodeIDAttr, ok := item["node_id"].(*types.AttributeValueMemberN)
	if !ok {
		return Member{}, errors.New("distributed: registry row missing node_id")
	}
	addrAttr, ok := item["address"].(*types.AttributeValueMemberS)
	if !ok {
		return Member{}, errors.New("distributed: registry row missing address")
	}
	hbAttr, ok := item["heartbeat"].(*types.AttributeValueMemberN)
	if !ok {
		return Member{}, errors.New("distributed: registry row missing heartbeat")
	}

	nodeID, err := strconv.Atoi(nodeIDAttr.Value)
	if err != nil {
		return Member{}, fmt.Errorf("distributed: parse node_id: %w", err)
	}
	hbUnix, err := strconv.ParseInt(hbAttr.Value, 10, 64)
	if err != nil {
		return Member{}, fmt.Errorf("distributed: parse heartbeat: %w", err)
	}

	return Member{
		NodeID:        nodeID,
		Address:       addrAttr.Value,
		LastHeartbeat: time.Unix(hbUnix, 0),
	}, nil
}
