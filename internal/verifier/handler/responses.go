package handler

import (
	"proofgate/internal/verifier"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
)

// VerifyResponse is the in-body verification envelope. Crypto and policy
// failures ride a 200 transport status with status "error", so relying
// clients always parse the body instead of branching on transport codes.
type VerifyResponse struct {
	Status            string             `json:"status"`
	Result            bool               `json:"result"`
	CredentialSubject *CredentialSubject `json:"credentialSubject,omitempty"`
	Receipt           string             `json:"receipt,omitempty"`
	Reason            string             `json:"reason,omitempty"`
	ErrorCode         string             `json:"error_code,omitempty"`
	Details           []string           `json:"details,omitempty"`
}

// CredentialSubject is the disclosed attribute set of a successful
// verification. The nullifier is replay-prevention state and never leaves
// the gateway.
type CredentialSubject struct {
	AgeOverMinimum bool   `json:"ageOverMinimum"`
	Nationality    string `json:"nationality,omitempty"`
	Gender         string `json:"gender,omitempty"`
}

func subjectFromDisclosure(d *domain.Disclosure) *CredentialSubject {
	if d == nil {
		return nil
	}
	return &CredentialSubject{
		AgeOverMinimum: d.AgeOverMinimum,
		Nationality:    string(d.Nationality),
		Gender:         d.Gender,
	}
}

// FromResult converts a verification outcome into the wire envelope. The
// receipt is attached by the handler, not here.
func FromResult(result *verifier.Result) VerifyResponse {
	if result.Valid {
		return VerifyResponse{
			Status:            "success",
			Result:            true,
			CredentialSubject: subjectFromDisclosure(result.Disclosure),
		}
	}

	return VerifyResponse{
		Status:    "error",
		Result:    false,
		Reason:    reasonFor(result),
		ErrorCode: result.Code.WireCode(),
		Details:   result.Details(),
	}
}

func reasonFor(result *verifier.Result) string {
	switch result.Code {
	case dErrors.CodeCryptoInvalid:
		return "proof failed cryptographic verification"
	case dErrors.CodePolicyViolation:
		return "disclosure failed policy evaluation"
	default:
		return "verification failed"
	}
}
