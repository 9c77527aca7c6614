// Package retrieval fetches grounding context from a managed knowledge base.
package retrieval

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/logging"
	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
)

const (
	// previewLength is the rune count kept from a source's first chunk.
	previewLength = 200
	unknownSource = "Unknown"
)

// Client is the subset of the Bedrock agent runtime API used here.
type Client interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// Retriever turns a question into a context block and a citation list.
// A nil client means retrieval is unavailable and every call is empty.
type Retriever struct {
	client Client
	topK   int32
	logger *zap.Logger
}

// New creates a retriever over an existing client.
func New(client Client, topK int32, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		client: client,
		topK:   topK,
		logger: logger.Named("retrieval"),
	}
}

// NewFromConfig builds a Bedrock client with static credentials from the
// resolved secrets. Missing credentials leave retrieval disabled rather than
// failing, so answers are generated without context.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Retriever, error) {
	accessKey := cfg.Secrets.Get("AWS_ACCESS_KEY")
	secretKey := cfg.Secrets.Get("AWS_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		logger.Warn("AWS credentials missing; knowledge base retrieval disabled")
		return New(nil, cfg.Retrieval.TopK, logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Retrieval.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return New(bedrockagentruntime.NewFromConfig(awsCfg), cfg.Retrieval.TopK, logger), nil
}

// Enabled reports whether a client is configured.
func (r *Retriever) Enabled() bool {
	return r.client != nil
}

// Retrieve runs one knowledge-base query. It never fails: an empty kbID, a
// missing client, or any error yields an empty context and no citations.
func (r *Retriever) Retrieve(ctx context.Context, query, kbID string) (string, []models.Citation) {
	if kbID == "" || r.client == nil {
		return "", []models.Citation{}
	}

	out, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(kbID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(r.topK),
			},
		},
	})
	if err != nil {
		r.logger.Error("Knowledge base retrieval failed",
			zap.String("kb_id", kbID),
			zap.String("error", logging.SanitizeError(err)))
		metrics.RetrievalFailed()
		return "", []models.Citation{}
	}

	retrievedContext, citations := render(out.RetrievalResults)
	r.logger.Debug("Knowledge base retrieval completed",
		zap.String("kb_id", kbID),
		zap.Int("chunks", len(out.RetrievalResults)),
		zap.Int("sources", len(citations)))
	return retrievedContext, citations
}

// render formats chunks as a bullet list and keeps one citation per source
// file, in first-seen order.
func render(results []types.KnowledgeBaseRetrievalResult) (string, []models.Citation) {
	var sb strings.Builder
	citations := []models.Citation{}
	seen := make(map[string]bool)

	for _, res := range results {
		text := ""
		if res.Content != nil {
			text = aws.ToString(res.Content.Text)
		}
		sb.WriteString("- ")
		sb.WriteString(text)
		sb.WriteString("\n")

		name := sourceName(res.Location)
		if seen[name] {
			continue
		}
		seen[name] = true
		citations = append(citations, models.Citation{
			Filename: name,
			Preview:  preview(text),
		})
	}
	return sb.String(), citations
}

func sourceName(loc *types.RetrievalResultLocation) string {
	if loc == nil || loc.S3Location == nil || loc.S3Location.Uri == nil {
		return unknownSource
	}
	uri := *loc.S3Location.Uri
	name := uri[strings.LastIndex(uri, "/")+1:]
	if name == "" {
		return unknownSource
	}
	return name
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return strings.ReplaceAll(string(runes), "\n", " ") + "..."
}
