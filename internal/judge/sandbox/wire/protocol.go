package wire

import "io"

// InputFile is one file to materialize in the sandbox's tmpfs before
// the target program runs. Filename is relative to /tmp.
type InputFile struct {
	Filename string
	Content  []byte
	Mode     int32
}

// OutputFile is one collected artifact. Filename is relative to /tmp;
// a requested file that does not exist yields empty Content.
type OutputFile struct {
	Filename string
	Content  []byte
}

// JudgeRequest is the driver's stdin payload: everything it needs to
// run one program in the sandbox and report back a verdict.
type JudgeRequest struct {
	TimeLimitMs     int32
	MemoryLimitMB   int64
	PIDsLimit       int32
	RootFSPath      string
	TmpfsSize       string
	CgroupRoot      string
	SandboxID       string
	StdinBytes      []byte
	Cmdline         []string
	InputFiles      []InputFile
	OutputFilenames []string
	SeccompProfile  string
}

// Encode writes the request in wire format.
func (r JudgeRequest) Encode(w io.Writer) error {
	if err := WriteInt32(w, r.TimeLimitMs); err != nil {
		return err
	}
	if err := WriteInt64(w, r.MemoryLimitMB); err != nil {
		return err
	}
	if err := WriteInt32(w, r.PIDsLimit); err != nil {
		return err
	}
	if err := WriteString(w, r.RootFSPath); err != nil {
		return err
	}
	if err := WriteString(w, r.TmpfsSize); err != nil {
		return err
	}
	if err := WriteString(w, r.CgroupRoot); err != nil {
		return err
	}
	if err := WriteString(w, r.SandboxID); err != nil {
		return err
	}
	if err := WriteBytes(w, r.StdinBytes); err != nil {
		return err
	}
	if err := WriteStringSlice(w, r.Cmdline); err != nil {
		return err
	}
	if err := WriteInt32(w, int32(len(r.InputFiles))); err != nil {
		return err
	}
	for _, f := range r.InputFiles {
		if err := WriteString(w, f.Filename); err != nil {
			return err
		}
		if err := WriteBytes(w, f.Content); err != nil {
			return err
		}
		if err := WriteInt32(w, f.Mode); err != nil {
			return err
		}
	}
	if err := WriteStringSlice(w, r.OutputFilenames); err != nil {
		return err
	}
	return WriteString(w, r.SeccompProfile)
}

// DecodeJudgeRequest reads a request in wire format.
func DecodeJudgeRequest(r io.Reader) (JudgeRequest, error) {
	var req JudgeRequest
	var err error
	if req.TimeLimitMs, err = ReadInt32(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.MemoryLimitMB, err = ReadInt64(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.PIDsLimit, err = ReadInt32(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.RootFSPath, err = ReadString(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.TmpfsSize, err = ReadString(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.CgroupRoot, err = ReadString(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.SandboxID, err = ReadString(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.StdinBytes, err = ReadBytes(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.Cmdline, err = ReadStringSlice(r); err != nil {
		return JudgeRequest{}, err
	}
	count, err := ReadInt32(r)
	if err != nil {
		return JudgeRequest{}, err
	}
	req.InputFiles = make([]InputFile, 0, count)
	for i := int32(0); i < count; i++ {
		var f InputFile
		if f.Filename, err = ReadString(r); err != nil {
			return JudgeRequest{}, err
		}
		if f.Content, err = ReadBytes(r); err != nil {
			return JudgeRequest{}, err
		}
		if f.Mode, err = ReadInt32(r); err != nil {
			return JudgeRequest{}, err
		}
		req.InputFiles = append(req.InputFiles, f)
	}
	if req.OutputFilenames, err = ReadStringSlice(r); err != nil {
		return JudgeRequest{}, err
	}
	if req.SeccompProfile, err = ReadString(r); err != nil {
		return JudgeRequest{}, err
	}
	return req, nil
}

// VerdictCode is the wire int32 encoding of a verdict. Kept separate
// from the verdict package's Verdict type so wire stays a leaf package
// with no sibling dependency.
type VerdictCode int32

const (
	VerdictOK  VerdictCode = 0
	VerdictTLE VerdictCode = 1
	VerdictMLE VerdictCode = 2
	VerdictRE  VerdictCode = 3
	VerdictUKE VerdictCode = 4
)

// JudgeResult is the driver's stdout payload.
type JudgeResult struct {
	Verdict     VerdictCode
	TimeMs      int32
	MemoryMB    int64
	StdoutBytes []byte
	StderrBytes []byte
	OutputFiles []OutputFile
}

// Encode writes the result in wire format.
func (res JudgeResult) Encode(w io.Writer) error {
	if err := WriteInt32(w, int32(res.Verdict)); err != nil {
		return err
	}
	if err := WriteInt32(w, res.TimeMs); err != nil {
		return err
	}
	if err := WriteInt64(w, res.MemoryMB); err != nil {
		return err
	}
	if err := WriteBytes(w, res.StdoutBytes); err != nil {
		return err
	}
	if err := WriteBytes(w, res.StderrBytes); err != nil {
		return err
	}
	if err := WriteInt32(w, int32(len(res.OutputFiles))); err != nil {
		return err
	}
	for _, f := range res.OutputFiles {
		if err := WriteString(w, f.Filename); err != nil {
			return err
		}
		if err := WriteBytes(w, f.Content); err != nil {
			return err
		}
	}
	return nil
}

// DecodeJudgeResult reads a result in wire format.
func DecodeJudgeResult(r io.Reader) (JudgeResult, error) {
	var res JudgeResult
	code, err := ReadInt32(r)
	if err != nil {
		return JudgeResult{}, err
	}
	res.Verdict = VerdictCode(code)
	if res.TimeMs, err = ReadInt32(r); err != nil {
		return JudgeResult{}, err
	}
	if res.MemoryMB, err = ReadInt64(r); err != nil {
		return JudgeResult{}, err
	}
	if res.StdoutBytes, err = ReadBytes(r); err != nil {
		return JudgeResult{}, err
	}
	if res.StderrBytes, err = ReadBytes(r); err != nil {
		return JudgeResult{}, err
	}
	count, err := ReadInt32(r)
	if err != nil {
		return JudgeResult{}, err
	}
	res.OutputFiles = make([]OutputFile, 0, count)
	for i := int32(0); i < count; i++ {
		var f OutputFile
		if f.Filename, err = ReadString(r); err != nil {
			return JudgeResult{}, err
		}
		if f.Content, err = ReadBytes(r); err != nil {
			return JudgeResult{}, err
		}
		res.OutputFiles = append(res.OutputFiles, f)
	}
	return res, nil
}

// UKE builds a synthesized internal-failure response: zero
// time/memory, a stderr message, no artifacts.
func UKE(cause string) JudgeResult {
	return JudgeResult{
		Verdict:     VerdictUKE,
		StderrBytes: []byte("Internal Error: " + cause),
		OutputFiles: []OutputFile{},
	}
}
