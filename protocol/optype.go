package protocol

import "fmt"

// OpType is the numeric id of an operation in the static variant of the
// transaction wire format.
type OpType uint8

const (
	OpVote OpType = iota
	OpComment
	OpTransfer
	OpTransferToVesting
	OpWithdrawVesting
	OpLimitOrderCreate
	OpLimitOrderCancel
	OpFeedPublish
	OpConvert
	OpAccountCreate
	OpAccountUpdate
	OpWitnessUpdate
	OpAccountWitnessVote
	OpAccountWitnessProxy
	OpPOW
	OpCustom
	OpReportOverProduction
	OpDeleteComment
	OpCustomJSON
	OpCommentOptions
	OpSetWithdrawVestingRoute
	OpLimitOrderCreate2
	OpChallengeAuthority
	OpProveAuthority
	OpRequestAccountRecovery
	OpRecoverAccount
	OpChangeRecoveryAccount
	OpEscrowTransfer
	OpEscrowDispute
	OpEscrowRelease
	OpPOW2
	OpEscrowApprove
	OpTransferToSavings
	OpTransferFromSavings
	OpCancelTransferFromSavings
	OpCustomBinary
	OpDeclineVotingRights
	OpResetAccount
	OpSetResetAccount
)

var opNames = [...]string{
	"vote",
	"comment",
	"transfer",
	"transfer_to_vesting",
	"withdraw_vesting",
	"limit_order_create",
	"limit_order_cancel",
	"feed_publish",
	"convert",
	"account_create",
	"account_update",
	"witness_update",
	"account_witness_vote",
	"account_witness_proxy",
	"pow",
	"custom",
	"report_over_production",
	"delete_comment",
	"custom_json",
	"comment_options",
	"set_withdraw_vesting_route",
	"limit_order_create2",
	"challenge_authority",
	"prove_authority",
	"request_account_recovery",
	"recover_account",
	"change_recovery_account",
	"escrow_transfer",
	"escrow_dispute",
	"escrow_release",
	"pow2",
	"escrow_approve",
	"transfer_to_savings",
	"transfer_from_savings",
	"cancel_transfer_from_savings",
	"custom_binary",
	"decline_voting_rights",
	"reset_account",
	"set_reset_account",
}

var opTypes = func() map[string]OpType {
	m := make(map[string]OpType, len(opNames))
	for i, name := range opNames {
		m[name] = OpType(i)
	}
	return m
}()

func (t OpType) String() string {
	if int(t) < len(opNames) {
		return opNames[t]
	}
	return fmt.Sprintf("OpType(%d)", uint8(t))
}

// ParseOpType returns the OpType with the given node name.
func ParseOpType(name string) (OpType, error) {
	t, ok := opTypes[name]
	if !ok {
		return 0, fmt.Errorf("unknown operation %q", name)
	}
	return t, nil
}

// OpNames returns the node names of all known operations in OpType order.
func OpNames() []string {
	return append([]string(nil), opNames[:]...)
}
