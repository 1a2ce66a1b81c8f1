package storage

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBlobStore keeps blobs in one Azure Storage container
type AzureBlobStore struct {
	client    *azblob.Client
	container string
}

var _ BlobStore = (*AzureBlobStore)(nil)

// NewAzureBlobStore connects with a shared key to the account's blob endpoint
func NewAzureBlobStore(accountName, accountKey, container string) (*AzureBlobStore, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("azure account name and key must both be set")
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &AzureBlobStore{client: client, container: container}, nil
}

func (s *AzureBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	stream, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("blob %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download blob %q: %w", key, err)
	}
	defer stream.Body.Close()
	return io.ReadAll(stream.Body)
}

// PutNew uploads with If-None-Match: * so an existing blob is never replaced
func (s *AzureBlobStore) PutNew(ctx context.Context, key string, value []byte) error {
	anyTag := azcore.ETagAny
	_, err := s.client.UploadBuffer(ctx, s.container, key, value, &azblob.UploadBufferOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: &anyTag},
		},
	})
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return fmt.Errorf("blob %q: %w", key, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to upload blob %q: %w", key, err)
	}
	return nil
}

func (s *AzureBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get next page of blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

