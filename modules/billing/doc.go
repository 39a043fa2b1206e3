// Package billing exposes the subscription state engine over HTTP.
//
// Handlers expects the tenant to be resolved by pkg/tenant middleware before
// it runs; requests without a tenant are rejected with 401. Every response
// uses the handler.JSONResponse envelope. Domain errors are mapped to status
// codes as follows:
//
//	422  invalid reason, selection or plan ID
//	409  state conflicts such as no_downgrade_scheduled or operation_in_flight
//	404  subscription_not_found
//	503  lock or storage failures
//
// Scheduling a downgrade that is already pending is not an error: the
// existing schedule is returned with meta.notice set to "already_scheduled".
package billing
