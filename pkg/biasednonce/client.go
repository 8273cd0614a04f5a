package biasednonce

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
	"github.com/mahdiidarabi/ecdsa-biased/pkg/lattice"
)

// Client provides a high-level API for running the whole recovery on a
// transcript: key recovery, public key checks and flag decryption.
type Client struct {
	curve    *curve.Params
	parser   TranscriptParser
	attack   *Attack
	scenario Scenario
	layout   Layout
	logger   Logger
}

// NewClient creates a new client with default settings: the 512-bit curve,
// the line transcript format and the recorded conversation layout.
func NewClient() *Client {
	return &Client{
		curve:    curve.H1(),
		parser:   &LineParser{},
		attack:   NewAttack(curve.H1()),
		scenario: DefaultScenario(),
		layout:   DefaultLayout(),
	}
}

// WithCurve sets the curve. The attack is moved to the new curve keeping
// its solver, config, logger and any custom nonce model.
func (c *Client) WithCurve(params *curve.Params) *Client {
	c.curve = params
	c.attack = c.attack.onCurve(params)
	return c
}

// WithParser sets a custom transcript parser.
func (c *Client) WithParser(parser TranscriptParser) *Client {
	c.parser = parser
	return c
}

// WithAttack sets a preconfigured attack. Its curve must match the client's.
func (c *Client) WithAttack(attack *Attack) *Client {
	c.attack = attack
	return c
}

// WithSolver sets a custom bounded solver on the client's attack.
func (c *Client) WithSolver(solver lattice.Solver) *Client {
	c.attack.WithSolver(solver)
	return c
}

// WithScenario sets the signed messages.
func (c *Client) WithScenario(s Scenario) *Client {
	c.scenario = s
	return c
}

// WithLayout sets which record carries what.
func (c *Client) WithLayout(l Layout) *Client {
	c.layout = l
	return c
}

// WithLogger sets the client logger. It also receives the attack's progress
// unless the attack was given a logger of its own.
func (c *Client) WithLogger(l Logger) *Client {
	c.logger = l
	return c
}

// Run parses the transcript at source and runs the scenario on it.
func (c *Client) Run(ctx context.Context, source string) (*RecoveryResult, error) {
	entries, err := c.parser.ParseTranscript(source)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse transcript")
	}
	return c.RunEntries(ctx, entries)
}

// RunEntries runs the scenario on already parsed records.
//
// Steps:
//   - recover d from the two signatures by the target key
//   - recover Qb from them and check d·G = Qb
//   - recover the peer key candidates Qa from its signature
//   - decrypt the flag under the key derived from the x-coordinate of d·Qa,
//     trying each candidate Qa until the padding checks out
//
// A single signature does not pin down Qa: every recovered candidate
// verifies it. Verification results are logged before decryption is
// attempted. Any other failure aborts the run.
func (c *Client) RunEntries(ctx context.Context, entries []*Entry) (*RecoveryResult, error) {
	log := orNop(c.logger)
	if need := c.layout.records(); len(entries) < need {
		return nil, errors.Wrapf(ErrParse, "transcript has %d records, need %d", len(entries), need)
	}

	peerSig, err := entries[c.layout.Peer].Signature(HashMessage(c.curve, c.scenario.PeerMessage))
	if err != nil {
		return nil, err
	}
	sig1, err := entries[c.layout.First].Signature(HashMessage(c.curve, c.scenario.FirstMessage))
	if err != nil {
		return nil, err
	}
	sig2, err := entries[c.layout.Second].Signature(HashMessage(c.curve, c.scenario.SecondMessage))
	if err != nil {
		return nil, err
	}
	ciphertext, err := entries[c.layout.Ciphertext].Ciphertext()
	if err != nil {
		return nil, err
	}

	log.Info("Recovering private key from %q and %q", c.scenario.FirstMessage, c.scenario.SecondMessage)
	attackLog := log
	if c.attack.logger != nil {
		attackLog = c.attack.logger
	}
	res, err := c.attack.recoverWith(ctx, sig1, sig2, attackLog)
	if err != nil {
		return nil, err
	}
	d := res.PrivateKey

	candidates, err := RecoverPublicKeys(c.curve, sig1.R, sig1.S, sig1.Z)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recover Qb")
	}
	qb, _, err := SelectPublicKey(ctx, c.curve, candidates, sig1, sig2)
	if err != nil {
		log.Error("Qb Verify: false")
		return nil, errors.Wrap(err, "no candidate Qb verifies both signatures")
	}
	log.Info("Qb Verify: %t", VerifyHash(c.curve, sig1.Z, qb, sig1.R, sig1.S))
	log.Info("Qb Verify: %t", VerifyHash(c.curve, sig2.Z, qb, sig2.R, sig2.S))

	verified, err := VerifyPrivateKey(c.curve, d, qb)
	if err != nil {
		return nil, err
	}
	log.Info("d Verify: %t", verified)
	if !verified {
		return nil, errors.Wrap(ErrVerificationMismatch, "d·G does not match the recovered public key")
	}

	peerKeys, err := RecoverPublicKeys(c.curve, peerSig.R, peerSig.S, peerSig.Z)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recover Qa")
	}
	var lastErr error
	for i, qa := range peerKeys {
		ok := VerifyHash(c.curve, peerSig.Z, qa, peerSig.R, peerSig.S)
		log.Info("Qa[%d] Verify: %t", i, ok)
		if !ok {
			continue
		}
		sharedX, err := c.curve.AffineX(c.curve.Multiply(qa, d))
		if err != nil {
			lastErr = errors.Wrap(ErrArithmeticPrecondition, "shared point is at infinity")
			log.Warning("Qa[%d] Decrypt: %v", i, lastErr)
			continue
		}
		plaintext, err := Decrypt(ciphertext, sharedX)
		if err != nil {
			lastErr = err
			log.Warning("Qa[%d] Decrypt: %v", i, err)
			continue
		}
		log.Info("Qa[%d] Decrypt: ok", i)
		log.Info("Flag: %s", plaintext)

		return &RecoveryResult{
			PrivateKey: d,
			PublicKey:  qb,
			PeerKey:    qa,
			SharedX:    sharedX,
			Plaintext:  plaintext,
			Attack:     res,
			Verified:   verified,
		}, nil
	}
	if lastErr == nil {
		log.Error("Qa Verify: false")
		return nil, errors.Wrap(ErrVerificationMismatch, "no candidate Qa verifies the peer signature")
	}
	return nil, lastErr
}
