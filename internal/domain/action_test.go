package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeActionType(t *testing.T) {
	require.Equal(t, ActionAlert, NormalizeActionType("ALERT"))
	require.Equal(t, ActionReduce, NormalizeActionType("REDUCE"))
	require.Equal(t, ActionDiversify, NormalizeActionType("DIVERSIFY"))

	// everything outside the closed set coerces to ALERT
	require.Equal(t, ActionAlert, NormalizeActionType("LIQUIDATE"))
	require.Equal(t, ActionAlert, NormalizeActionType("reduce"))
	require.Equal(t, ActionAlert, NormalizeActionType(""))
	require.Equal(t, ActionAlert, NormalizeActionType("ALERT "))
}

func TestActionTypeValid(t *testing.T) {
	require.True(t, ActionAlert.Valid())
	require.True(t, ActionReduce.Valid())
	require.True(t, ActionDiversify.Valid())
	require.False(t, ActionType("SELL").Valid())
	require.False(t, ActionType("").Valid())
}

func TestProtectionPlanValidate(t *testing.T) {
	valid := ProtectionPlan{Actions: []ProtectionAction{
		{Type: ActionAlert, Message: "watch out"},
	}}
	require.NoError(t, valid.Validate())

	empty := ProtectionPlan{Actions: []ProtectionAction{}}
	require.NoError(t, empty.Validate())

	nilActions := ProtectionPlan{}
	require.Error(t, nilActions.Validate())

	badType := ProtectionPlan{Actions: []ProtectionAction{
		{Type: ActionType("PANIC"), Message: "nope"},
	}}
	require.Error(t, badType.Validate())
}
