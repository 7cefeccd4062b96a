// Package alerts evaluates threshold rules against served predictions and
// delivers webhook notifications when rules fire or resolve.
//
// Rules are simple "field operator value" expressions over prediction fields
// (failure_probability, confidence, alert). Each rule is deduplicated per
// schema preset with a cooldown, so a burst of high-probability predictions
// produces one notification, not hundreds. An Engine with no rules is valid
// and evaluates to a no-op.
package alerts
