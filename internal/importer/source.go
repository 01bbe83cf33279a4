package importer

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Loader reads catalog CSV files from local paths, http(s) URLs and
// s3://bucket/key locations. Sources ending in .gz are decompressed.
type Loader struct {
	httpClient *http.Client
	region     string

	s3Once sync.Once
	s3     s3iface.S3API
	s3Err  error
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithS3Client uses client for s3:// sources instead of a default session
func WithS3Client(client s3iface.S3API) LoaderOption {
	return func(l *Loader) {
		l.s3Once.Do(func() { l.s3 = client })
	}
}

// WithRegion sets the AWS region of the default S3 session
func WithRegion(region string) LoaderOption {
	return func(l *Loader) {
		l.region = region
	}
}

// WithHTTPClient replaces the client used for http(s) sources
func WithHTTPClient(hc *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = hc
	}
}

// NewLoader creates a loader. The S3 session is only created when an
// s3:// source is first read.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type sourceResult struct {
	index int
	rows  []ProductRow
	err   error
}

// LoadAll reads every source concurrently and returns their rows in source
// order. Any failing source fails the whole load.
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([]ProductRow, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}

	resultChan := make(chan sourceResult, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			rows, err := l.Load(ctx, source)
			resultChan <- sourceResult{index: index, rows: rows, err: err}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order
	results := make([]sourceResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	var rows []ProductRow
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", sources[i], result.err)
		}
		rows = append(rows, result.rows...)
	}
	return rows, nil
}

// Load reads and parses one source
func (l *Loader) Load(ctx context.Context, source string) ([]ProductRow, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if strings.HasSuffix(source, ".gz") {
		gzReader, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	rows, err := ParseRows(r)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].source = source
	}
	return rows, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(source, "s3://"):
		return l.openS3(ctx, source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.openURL(ctx, source)
	default:
		return os.Open(source)
	}
}

func (l *Loader) openURL(ctx context.Context, source string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// ParseS3URL splits s3://bucket/key
func ParseS3URL(source string) (bucket, key string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 location %q: %w", source, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q: want s3://bucket/key", source)
	}
	return bucket, key, nil
}

func (l *Loader) openS3(ctx context.Context, source string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URL(source)
	if err != nil {
		return nil, err
	}

	svc, err := l.s3Client()
	if err != nil {
		return nil, err
	}

	result, err := svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucket, err)
	}
	return result.Body, nil
}

func (l *Loader) s3Client() (s3iface.S3API, error) {
	l.s3Once.Do(func() {
		cfg := aws.NewConfig()
		if l.region != "" {
			cfg = cfg.WithRegion(l.region)
		}
		sess, err := session.NewSessionWithOptions(session.Options{
			Config:            *cfg,
			SharedConfigState: session.SharedConfigEnable,
		})
		if err != nil {
			l.s3Err = fmt.Errorf("failed to create AWS session: %w", err)
			return
		}
		l.s3 = s3.New(sess)
	})
	return l.s3, l.s3Err
}
