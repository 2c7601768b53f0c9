package journal

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
)

// VerifyResult reports whether every journaled asset can be restored.
type VerifyResult struct {
	Entries       int
	MissingBlocks []string // backup CIDs absent from the block area
	InvalidBlocks []string // unparsable CIDs or blocks whose bytes no longer hash to their CID
	TotalSize     int64    // bytes held by distinct backup blocks
	CanRestore    bool
	ErrorDetails  []string
}

// Verify checks the backup block of every entry. Problems with individual
// blocks are collected in the result; the error is reserved for failures to
// read the journal itself.
func (j *Journal) Verify(ctx context.Context) (*VerifyResult, error) {
	entries, err := j.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		Entries:       len(entries),
		MissingBlocks: make([]string, 0),
		InvalidBlocks: make([]string, 0),
		ErrorDetails:  make([]string, 0),
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[e.BackupCID] {
			continue
		}
		seen[e.BackupCID] = true

		j.verifyBlock(ctx, e, result)
	}

	result.CanRestore = len(result.MissingBlocks) == 0 && len(result.InvalidBlocks) == 0
	log.Debugw("verify", "entries", result.Entries, "missing", len(result.MissingBlocks), "invalid", len(result.InvalidBlocks))
	return result, nil
}

func (j *Journal) verifyBlock(ctx context.Context, e Entry, result *VerifyResult) {
	c, err := cid.Decode(e.BackupCID)
	if err != nil {
		result.InvalidBlocks = append(result.InvalidBlocks, e.BackupCID)
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("%s: invalid CID %q", e.Path, e.BackupCID))
		return
	}

	has, err := j.blockStore.Has(ctx, c)
	if err != nil {
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("%s: error checking block %s: %v", e.Path, c, err))
		return
	}
	if !has {
		result.MissingBlocks = append(result.MissingBlocks, e.BackupCID)
		return
	}

	blk, err := j.blockStore.Get(ctx, c)
	if err != nil {
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("%s: error reading block %s: %v", e.Path, c, err))
		return
	}

	sum, err := j.builder.Sum(blk.RawData())
	if err != nil || !sum.Equals(c) {
		result.InvalidBlocks = append(result.InvalidBlocks, e.BackupCID)
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("%s: block %s is corrupted", e.Path, c))
		return
	}

	result.TotalSize += int64(len(blk.RawData()))
}
