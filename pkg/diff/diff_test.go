package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/tables"
)

func row(key string, values ...string) record.Row {
	return record.Row{Key: record.Key(key), Values: values}
}

func remoteRow(index int, key string, values ...string) tables.RemoteRow {
	return tables.RemoteRow{Index: index, Row: row(key, values...)}
}

func TestPlanEmptyIncoming(t *testing.T) {
	plan := Plan(nil, []tables.RemoteRow{remoteRow(2, "a_1", "x")})
	assert.Empty(t, plan)
}

func TestPlanEmptyRemote(t *testing.T) {
	incoming := []record.Row{
		row("a_1", "one"),
		row("a_2", "two"),
	}

	plan := Plan(incoming, nil)
	require.Len(t, plan, 2)
	for i, action := range plan {
		assert.Equal(t, Insert, action.Kind)
		assert.Zero(t, action.Index)
		assert.Equal(t, incoming[i].Key, action.Row.Key)
	}
}

func TestPlanClassification(t *testing.T) {
	remote := []tables.RemoteRow{
		remoteRow(2, "shop_1", "1", "shop", "same"),
		remoteRow(3, "shop_2", "2", "shop", "old name"),
	}
	incoming := []record.Row{
		row("shop_1", "1", "shop", "same"),     // unchanged
		row("shop_2", "2", "shop", "new name"), // updated
		row("shop_3", "3", "shop", "fresh"),    // inserted
	}

	plan := Plan(incoming, remote)
	require.Len(t, plan, 3)

	assert.Equal(t, Unchanged, plan[0].Kind)
	assert.Equal(t, 2, plan[0].Index)

	assert.Equal(t, Update, plan[1].Kind)
	assert.Equal(t, 3, plan[1].Index)
	assert.Equal(t, "new name", plan[1].Row.Values[2])

	assert.Equal(t, Insert, plan[2].Kind)
}

func TestPlanSingleFieldUpdate(t *testing.T) {
	remote := []tables.RemoteRow{
		remoteRow(2, "shop_1", "1", "shop", "name", "100"),
		remoteRow(3, "shop_2", "2", "shop", "name", "200"),
		remoteRow(4, "shop_3", "3", "shop", "name", "300"),
	}
	incoming := []record.Row{
		row("shop_1", "1", "shop", "name", "100"),
		row("shop_2", "2", "shop", "name", "250"), // price changed
		row("shop_3", "3", "shop", "name", "300"),
	}

	plan := Plan(incoming, remote)
	require.Len(t, plan, 3)
	assert.Equal(t, Unchanged, plan[0].Kind)
	assert.Equal(t, Update, plan[1].Kind)
	assert.Equal(t, Unchanged, plan[2].Kind)
}

func TestPlanVolatileColumnsIgnored(t *testing.T) {
	// column 2 holds a refresh stamp that differs every cycle
	remote := []tables.RemoteRow{
		remoteRow(2, "shop_1", "1", "name", "2025-11-01 06:00:00"),
	}
	incoming := []record.Row{
		row("shop_1", "1", "name", "2025-11-02 06:00:00"),
	}

	plan := Plan(incoming, remote, WithVolatileColumns(2))
	require.Len(t, plan, 1)
	assert.Equal(t, Unchanged, plan[0].Kind)

	// without the option the stamp difference registers as an update
	plan = Plan(incoming, remote)
	assert.Equal(t, Update, plan[0].Kind)
}

func TestPlanShortRemoteRowEqualsEmptyTail(t *testing.T) {
	// the sheets API drops trailing empty cells from reads
	remote := []tables.RemoteRow{
		remoteRow(2, "shop_1", "1", "name"),
	}
	incoming := []record.Row{
		row("shop_1", "1", "name", "", ""),
	}

	plan := Plan(incoming, remote)
	require.Len(t, plan, 1)
	assert.Equal(t, Unchanged, plan[0].Kind)
}

func TestPlanRemoteDuplicateLastWins(t *testing.T) {
	remote := []tables.RemoteRow{
		remoteRow(2, "shop_1", "1", "stale"),
		remoteRow(5, "shop_1", "1", "current"),
	}
	incoming := []record.Row{
		row("shop_1", "1", "current"),
	}

	plan := Plan(incoming, remote)
	require.Len(t, plan, 1)
	assert.Equal(t, Unchanged, plan[0].Kind)
	assert.Equal(t, 5, plan[0].Index)
}

func TestPlanNeverTouchesRemoteOnlyRows(t *testing.T) {
	remote := []tables.RemoteRow{
		remoteRow(2, "shop_1", "1"),
		remoteRow(3, "shop_2", "2"),
	}
	incoming := []record.Row{
		row("shop_1", "1"),
	}

	plan := Plan(incoming, remote)
	require.Len(t, plan, 1)
	assert.Equal(t, record.Key("shop_1"), plan[0].Row.Key)
	// shop_2 appears nowhere in the plan: upsert-only, no deletes
	for _, action := range plan {
		assert.NotEqual(t, record.Key("shop_2"), action.Row.Key)
	}
}

func TestPlanStableInputOrder(t *testing.T) {
	incoming := []record.Row{
		row("c_3", "3"),
		row("a_1", "1"),
		row("b_2", "2"),
	}

	plan := Plan(incoming, nil)
	require.Len(t, plan, 3)
	assert.Equal(t, record.Key("c_3"), plan[0].Row.Key)
	assert.Equal(t, record.Key("a_1"), plan[1].Row.Key)
	assert.Equal(t, record.Key("b_2"), plan[2].Row.Key)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "insert", Insert.String())
	assert.Equal(t, "update", Update.String())
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
