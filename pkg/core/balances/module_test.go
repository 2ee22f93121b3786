package balances

import (
	"strconv"
	"sync"
	"testing"

	"github.com/statecommit/balance-mpt/internal/random"
	"github.com/statecommit/balance-mpt/pkg/config"
	"github.com/statecommit/balance-mpt/pkg/core/mpt"
	"github.com/statecommit/balance-mpt/pkg/encoding/balance"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestModule(t *testing.T, history int) *Module {
	m, err := NewModule(config.TrieConfiguration{History: history}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return m
}

func TestNewModule(t *testing.T) {
	m := newTestModule(t, 4)
	require.Equal(t, uint64(1), m.Version())
	require.Equal(t, mpt.NewTrie().StateRoot(), m.StateRoot())
	require.Equal(t, 0, m.Len())

	_, err := NewModule(config.TrieConfiguration{}, nil)
	require.Error(t, err)
}

func TestModule_Upsert(t *testing.T) {
	m := newTestModule(t, 16)

	require.NoError(t, m.Upsert("0x1234", "100"))
	require.NoError(t, m.Upsert("0x5678", "0xc8"))
	require.Equal(t, uint64(3), m.Version())
	require.Equal(t, 2, m.Len())
	require.NoError(t, m.Validate())

	v, err := m.Get("0x5678")
	require.NoError(t, err)
	require.Equal(t, "200", v)

	t.Run("verify", func(t *testing.T) {
		require.True(t, m.Verify("0x1234", "100"))
		require.True(t, m.Verify("1234", "0x64"))
		require.True(t, m.Verify("0x5678", "00200"))
		require.False(t, m.Verify("0x5678", "100"))
		require.Equal(t, mpt.Mismatch, m.Check("0x5678", "100"))
		require.Equal(t, mpt.Mismatch, m.Check("0x5678", "-1"))
		require.Equal(t, mpt.Mismatch, m.Check("0x5678", ""))
		require.Equal(t, mpt.Absent, m.Check("0x9999", "100"))
		require.Equal(t, mpt.Absent, m.Check("0x12", "100"))
	})
	t.Run("unchanged", func(t *testing.T) {
		root, ver := m.StateRoot(), m.Version()
		require.NoError(t, m.Upsert("0x1234", "0x64"))
		require.Equal(t, root, m.StateRoot())
		require.Equal(t, ver, m.Version())
	})
	t.Run("invalid", func(t *testing.T) {
		root, ver := m.StateRoot(), m.Version()
		require.ErrorIs(t, m.Upsert("0x1234", "1.5"), balance.ErrInvalidBalance)
		require.ErrorIs(t, m.Upsert("0x12", "1"), mpt.ErrInvalidKeyFormat)
		require.ErrorIs(t, m.Upsert("zz", ""), mpt.ErrInvalidKeyFormat)
		require.Equal(t, root, m.StateRoot())
		require.Equal(t, ver, m.Version())
	})
	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Upsert("0x5678", ""))
		require.False(t, m.Verify("0x5678", "200"))
		_, err := m.Get("0x5678")
		require.ErrorIs(t, err, mpt.ErrNotFound)

		ver := m.Version()
		require.NoError(t, m.Upsert("0x5678", "")) // Missing already.
		require.Equal(t, ver, m.Version())
	})
}

func TestModule_UpsertBatch(t *testing.T) {
	m := newTestModule(t, 16)
	n, err := m.UpsertBatch([]Entry{
		{Address: "0x1234", Balance: "100"},
		{Address: "0x5678", Balance: "200"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = m.UpsertBatch([]Entry{
		{Address: "0x1234", Balance: "300"},
		{Address: "0x9999", Balance: "abc"},
		{Address: "0x5678", Balance: "400"},
	})
	require.ErrorIs(t, err, balance.ErrInvalidBalance)
	require.Equal(t, 1, n)
	require.True(t, m.Verify("0x1234", "300"))
	require.True(t, m.Verify("0x5678", "200"))
	require.Equal(t, mpt.Absent, m.Check("0x9999", "0"))

	n, err = m.UpsertBatch(nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestModule_History(t *testing.T) {
	const history = 4
	m := newTestModule(t, history)

	roots := map[uint64]string{}
	for i := 1; i <= 10; i++ {
		require.NoError(t, m.Upsert("0x1234", strconv.Itoa(i)))
		roots[m.Version()] = strconv.Itoa(i)
	}
	latest := m.Version()
	require.Equal(t, uint64(11), latest)

	for v := latest - history + 1; v <= latest; v++ {
		bal, err := m.GetAt(v, "0x1234")
		require.NoError(t, err)
		require.Equal(t, roots[v], bal)
		_, err = m.StateRootAt(v)
		require.NoError(t, err)
	}
	h, err := m.StateRootAt(latest)
	require.NoError(t, err)
	require.Equal(t, m.StateRoot(), h)

	_, err = m.GetAt(latest-history, "0x1234")
	require.ErrorIs(t, err, ErrUnknownVersion)
	_, err = m.StateRootAt(latest + 1)
	require.ErrorIs(t, err, ErrUnknownVersion)

	_, err = m.GetAt(latest, "0x5678")
	require.ErrorIs(t, err, mpt.ErrNotFound)
}

func TestModule_Concurrent(t *testing.T) {
	m := newTestModule(t, 8)
	addrs := random.Addresses(100, 20)

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s := m.Snapshot()
				_, _ = s.Get(addrs[i%len(addrs)])
				_ = m.StateRoot()
				_ = m.Verify(addrs[i%len(addrs)], "1")
			}
		}()
	}
	for i, a := range addrs {
		require.NoError(t, m.Upsert(a, strconv.Itoa(i+1)))
	}
	wg.Wait()

	require.Equal(t, len(addrs), m.Len())
	require.NoError(t, m.Validate())
	for i, a := range addrs {
		require.True(t, m.Verify(a, strconv.Itoa(i+1)))
	}

	// Same contents, reversed order.
	other := newTestModule(t, 8)
	for i := len(addrs) - 1; i >= 0; i-- {
		require.NoError(t, other.Upsert(addrs[i], strconv.Itoa(i+1)))
	}
	require.Equal(t, m.StateRoot(), other.StateRoot())
}
