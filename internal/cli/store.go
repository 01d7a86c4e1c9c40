package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/genarena/blobstore"
	minioblob "github.com/hupe1980/genarena/blobstore/minio"
	"github.com/hupe1980/genarena/blobstore/s3"
)

// storeFlags selects the blob store behind a snapshot store.
type storeFlags struct {
	dir      string
	bucket   string
	prefix   string
	endpoint string
	region   string
	minio    bool
	ddbTable string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.dir, "dir", "", "local snapshot store directory")
	fs.StringVar(&f.bucket, "s3-bucket", "", "S3 bucket holding the snapshot store")
	fs.StringVar(&f.prefix, "prefix", "", "key prefix inside the bucket")
	fs.StringVar(&f.endpoint, "endpoint", "", "custom S3 endpoint (host:port with --minio)")
	fs.StringVar(&f.region, "region", "", "AWS region")
	fs.BoolVar(&f.minio, "minio", false, "use the MinIO client (credentials from MINIO_ACCESS_KEY/MINIO_SECRET_KEY)")
	fs.StringVar(&f.ddbTable, "ddb-table", "", "DynamoDB table holding CURRENT commits")
	cmd.MarkFlagsMutuallyExclusive("dir", "s3-bucket")
}

func (f *storeFlags) isSet() bool {
	return f.dir != "" || f.bucket != ""
}

func (f *storeFlags) open(ctx context.Context) (blobstore.BlobStore, error) {
	switch {
	case f.dir != "":
		return blobstore.NewLocalStore(f.dir), nil
	case f.bucket == "":
		return nil, errors.New("one of --dir or --s3-bucket is required")
	case f.minio:
		return f.openMinio()
	}

	var opts []s3.Option
	if f.prefix != "" {
		opts = append(opts, s3.WithPrefix(f.prefix))
	}
	if f.region != "" {
		opts = append(opts, s3.WithRegion(f.region))
	}
	if f.endpoint != "" {
		opts = append(opts, s3.WithEndpoint(f.endpoint))
	}

	store, err := s3.New(ctx, f.bucket, opts...)
	if err != nil {
		return nil, err
	}
	if f.ddbTable == "" {
		return store, nil
	}

	var cfgOpts []func(*config.LoadOptions) error
	if f.region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(f.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, err
	}
	baseURI := "s3://" + f.bucket + "/" + strings.Trim(f.prefix, "/")
	return s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), f.ddbTable, baseURI), nil
}

func (f *storeFlags) openMinio() (blobstore.BlobStore, error) {
	if f.endpoint == "" {
		return nil, errors.New("--minio requires --endpoint")
	}
	client, err := minio.New(f.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: os.Getenv("MINIO_SECURE") == "true",
		Region: f.region,
	})
	if err != nil {
		return nil, err
	}
	return minioblob.NewStore(client, f.bucket, f.prefix), nil
}
