package service

// Authentication is modeled as an explicit state machine. Password
// verification alone never yields an access token: the session must walk
// through the TOTP step first, enrolling on first login.
//
//	logged_out ──password ok, sin MFA──▶ awaiting_mfa_enrollment ──secret emitido──▶ awaiting_otp
//	logged_out ──password ok, con MFA──▶ awaiting_otp
//	awaiting_otp ──TOTP válido──▶ authenticated
//
// Any failed check leaves the state unchanged; challenge tokens expire on
// their own.

type EstadoAuth string

const (
	EstadoLoggedOut    EstadoAuth = "logged_out"
	EstadoEnrolamiento EstadoAuth = "awaiting_mfa_enrollment"
	EstadoEsperandoOTP EstadoAuth = "awaiting_otp"
	EstadoAutenticado  EstadoAuth = "authenticated"
)

var transicionesAuth = map[EstadoAuth][]EstadoAuth{
	EstadoLoggedOut:    {EstadoEnrolamiento, EstadoEsperandoOTP},
	EstadoEnrolamiento: {EstadoEsperandoOTP},
	EstadoEsperandoOTP: {EstadoAutenticado},
	EstadoAutenticado:  {EstadoLoggedOut},
}

// PuedeTransicionar reports whether desde → hacia is a legal step.
func PuedeTransicionar(desde, hacia EstadoAuth) bool {
	for _, e := range transicionesAuth[desde] {
		if e == hacia {
			return true
		}
	}
	return false
}
