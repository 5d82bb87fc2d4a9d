package core

// TurnstileExpression makes an example Expression that's useful to
// have around.
//
// The symbols are turnstile inputs: "coin" and "push".  A coin
// unlocks the turnstile, and a push locks it again.  The Expression
// matches input sequences that leave the turnstile unlocked without
// anybody ever pushing against it while it was locked.
//
// See https://en.wikipedia.org/wiki/Finite-state_machine#Example:_coin-operated_turnstile.
func TurnstileExpression() Expression[string] {
	var (
		all  = Everything[string]()
		coin = Is("coin")
		push = Is("push")

		unlocked     = Then(all, coin)
		lockedPushes = Or(Then(push, all), Sequence(all, push, push, all))
	)
	return And(unlocked, Not(lockedPushes))
}
