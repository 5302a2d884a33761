// Package etcd implements store.LeaseKV on top of an etcd v3 cluster.
//
// Every write grants a fresh lease and attaches it to the key, so expiry is
// enforced server-side. CreateIfAbsent maps to a single transaction guarded
// by CreateRevision(key) == 0, which is etcd's canonical "key does not
// exist" compare.
package etcd

import (
	"context"
	"errors"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/unkn0wn-root/leasecache/store"
)

var ErrNilClient = errors.New("etcd store: nil client")

type Etcd struct {
	cli         *clientv3.Client
	closeClient bool
}

var _ store.LeaseKV = (*Etcd)(nil)

type Config struct {
	Client      *clientv3.Client
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Etcd, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Etcd{cli: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Etcd) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := s.cli.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if len(resp.Kvs) == 0 {
		return nil, false, nil // miss
	}
	return resp.Kvs[0].Value, true, nil
}

func (s *Etcd) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opts, err := s.leaseOpts(ctx, ttl)
	if err != nil {
		return err
	}
	_, err = s.cli.Put(ctx, key, string(value), opts...)
	return err
}

func (s *Etcd) CreateIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	lease, err := s.grant(ctx, ttl)
	if err != nil {
		return false, err
	}
	resp, err := s.cli.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, string(value), clientv3.WithLease(lease))).
		Commit()
	if err != nil {
		return false, err
	}
	if !resp.Succeeded && lease != clientv3.NoLease {
		// lost the race; revoke the unused lease so it does not linger
		_, _ = s.cli.Revoke(ctx, lease)
	}
	return resp.Succeeded, nil
}

func (s *Etcd) Delete(ctx context.Context, key string) error {
	_, err := s.cli.Delete(ctx, key)
	return err
}

func (s *Etcd) RangeScan(ctx context.Context, prefix string) ([]store.KV, error) {
	resp, err := s.cli.Get(ctx, prefix,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, err
	}
	out := make([]store.KV, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		out = append(out, store.KV{Key: string(kv.Key), Value: kv.Value})
	}
	return out, nil
}

func (s *Etcd) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	resp, err := s.cli.Delete(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

func (s *Etcd) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := s.cli.Get(ctx, key, clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}

// Close releases the underlying etcd client only when this store owns it.
func (s *Etcd) Close(context.Context) error {
	if s.closeClient {
		return s.cli.Close()
	}
	return nil
}

// grant returns a lease for ttl, rounded up to etcd's one-second
// granularity. Non-positive TTLs yield NoLease (permanent key).
func (s *Etcd) grant(ctx context.Context, ttl time.Duration) (clientv3.LeaseID, error) {
	if ttl <= 0 {
		return clientv3.NoLease, nil
	}
	secs := int64((ttl + time.Second - 1) / time.Second)
	resp, err := s.cli.Grant(ctx, secs)
	if err != nil {
		return clientv3.NoLease, err
	}
	return resp.ID, nil
}

func (s *Etcd) leaseOpts(ctx context.Context, ttl time.Duration) ([]clientv3.OpOption, error) {
	lease, err := s.grant(ctx, ttl)
	if err != nil {
		return nil, err
	}
	if lease == clientv3.NoLease {
		return nil, nil
	}
	return []clientv3.OpOption{clientv3.WithLease(lease)}, nil
}
