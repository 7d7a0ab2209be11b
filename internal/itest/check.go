package itest

import "github.com/wippyai/object-abi/object"

// Check runs the single-object conformance sequence against p. A null
// object is ErrorBadObj; any deviation is Mismatch or the status the call
// produced.
func Check(p ITest1Proxy) error {
	if p.IsNull() {
		return object.ErrorBadObj
	}
	if err := p.SingleIn(SuccessFlag); err != nil {
		return err
	}
	out, out2, err := p.MultiplePrimitive(uint16(SuccessFlag), SuccessFlag)
	if err != nil {
		return err
	}
	if out != uint16(SuccessFlag) || out2 != uint64(SuccessFlag) {
		return Mismatch
	}
	if err := p.BundledWithUnbundled(SingleEncapsulated{Inner: SuccessFlag}, SuccessFlag, Truth); err != nil {
		return err
	}
	if err := p.PrimitivePlusStructIn(SingleEncapsulated{Inner: SuccessFlag}, SuccessFlag); err != nil {
		return err
	}
	if v, err := p.SingleOut(); err != nil {
		return err
	} else if v != SuccessFlag {
		return Mismatch
	}
	s, magic, err := p.PrimitivePlusStructOut()
	if err != nil {
		return err
	}
	if s.Inner != SuccessFlag || magic != SuccessFlag {
		return Mismatch
	}
	if v, err := p.WellDocumentedMethod(SuccessFlag); err != nil {
		return err
	} else if v != SuccessFlag {
		return Mismatch
	}
	return nil
}
