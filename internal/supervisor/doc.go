// Package supervisor ties the backend process to the host application's
// lifetime.
//
// The host calls OnSetupComplete after it has initialised, which resolves the
// launch configuration, starts the backend and records its handle in a
// Registry. When the host shuts down it calls OnExitRequested, which drains the
// Registry and kills whatever it held. Neither hook waits on the backend and
// neither returns an error; every failure is logged and the host carries on.
package supervisor
