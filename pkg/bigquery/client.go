// Package bigquery ships daily reel engagement totals to a BigQuery table.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
)

const setupTimeout = 15 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery engagement table is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// EngagementRow is one reel's likes and comments for a single UTC day.
type EngagementRow struct {
	Day        civil.Date `bigquery:"day"`
	ReelID     string     `bigquery:"reel_id"`
	Likes      int64      `bigquery:"likes"`
	Comments   int64      `bigquery:"comments"`
	ExportedAt time.Time  `bigquery:"exported_at"`
}

// InsertID identifies the row for streaming dedup, so a retried export of
// the same day does not double count.
func (r EngagementRow) InsertID() string {
	return r.Day.String() + "/" + r.ReelID
}

type Client struct {
	client *bigquery.Client
	table  *bigquery.Table
}

// NewClient connects to BigQuery and makes sure the engagement table exists,
// creating it day-partitioned when missing. The dataset must already exist.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	datasetID := strings.TrimSpace(cfg.Dataset)
	tableID := strings.TrimSpace(cfg.EngagementTable)
	switch {
	case projectID == "":
		return nil, errProjectIDRequired
	case datasetID == "":
		return nil, errDatasetRequired
	case tableID == "":
		return nil, errTableNameRequired
	}

	bq, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	c := &Client{client: bq, table: bq.Dataset(datasetID).Table(tableID)}

	created, err := c.ensureTable(ctx)
	if err != nil {
		_ = bq.Close()
		return nil, err
	}
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"dataset": datasetID,
			"table":   tableID,
			"created": created,
		})
		logg.Info(logCtx, "bigquery engagement table ready")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	if js := strings.TrimSpace(gcp.CredentialsJSON); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	if path := strings.TrimSpace(gcp.ApplicationCredentials); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

// engagementTableMetadata describes the table NewClient creates.
func engagementTableMetadata() (*bigquery.TableMetadata, error) {
	schema, err := bigquery.InferSchema(EngagementRow{})
	if err != nil {
		return nil, fmt.Errorf("infer engagement schema: %w", err)
	}
	for _, f := range schema {
		f.Required = true
	}
	return &bigquery.TableMetadata{
		Description: "Daily likes and comments per video reel",
		Schema:      schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "day",
		},
		Clustering: &bigquery.Clustering{Fields: []string{"reel_id"}},
	}, nil
}

func (c *Client) ensureTable(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	if _, err := c.table.Metadata(ctx); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, fmt.Errorf("checking table %s: %w", c.table.FullyQualifiedName(), err)
	}

	meta, err := engagementTableMetadata()
	if err != nil {
		return false, err
	}
	if err := c.table.Create(ctx, meta); err != nil && !isConflict(err) {
		return false, fmt.Errorf("creating table %s: %w", c.table.FullyQualifiedName(), err)
	}
	return true, nil
}

// Ping checks the engagement table is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.table == nil {
		return errClientNotInitialized
	}
	_, err := c.table.Metadata(ctx)
	return err
}

// ExportEngagement streams rows into the engagement table.
func (c *Client) ExportEngagement(ctx context.Context, rows []EngagementRow) error {
	if c == nil || c.table == nil {
		return errClientNotInitialized
	}
	if len(rows) == 0 {
		return nil
	}
	if err := c.table.Inserter().Put(ctx, toSavers(rows)); err != nil {
		return fmt.Errorf("insert %d engagement rows: %w", len(rows), err)
	}
	return nil
}

func toSavers(rows []EngagementRow) []*bigquery.StructSaver {
	out := make([]*bigquery.StructSaver, len(rows))
	for i := range rows {
		out[i] = &bigquery.StructSaver{Struct: rows[i], InsertID: rows[i].InsertID()}
	}
	return out
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func apiCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code
	}
	return 0
}

func isNotFound(err error) bool { return apiCode(err) == http.StatusNotFound }

// isConflict covers a concurrent worker creating the table first.
func isConflict(err error) bool { return apiCode(err) == http.StatusConflict }
