package genepred

// Locate computes the transcript positions and annotated offsets of every
// exon boundary of a parsed record. It mutates r and may run once per record.
//
// Transcript positions run 1..ReferenceLength from the 5' end of the
// transcript, so on the minus strand they decrease along the genome.
func Locate(r *Record) error {
	switch {
	case r == nil:
		return logicErrorf("locate called on a nil record")
	case !r.parsed:
		return logicErrorf("locate called before parse")
	case r.located:
		return logicErrorf("record %s located twice", r.Name)
	case len(r.Exons) == 0:
		return logicErrorf("record %s has no exons", r.Name)
	}

	var (
		pos      int64
		forward  int64 // UTR bases before cdsStart on the genome
		backward int64 // UTR bases after cdsEnd on the genome
		coding   = r.IsCoding()
	)
	for i := range r.Exons {
		e := &r.Exons[i]
		e.TxStart = pos + 1
		pos += e.Len()
		e.TxEnd = pos

		if !coding {
			continue
		}
		if e.End < r.CDSStart {
			forward += e.Len()
		} else if e.Start < r.CDSStart {
			forward += r.CDSStart - e.Start
		}
		if e.Start > r.CDSEnd {
			backward += e.Len()
		} else if e.End > r.CDSEnd {
			backward += e.End - r.CDSEnd
		}
	}
	r.referenceLength = pos

	if r.IsReverseStrand() {
		r.forwardLength, r.backwardLength = backward, forward
		for i := range r.Exons {
			e := &r.Exons[i]
			e.TxStart = r.referenceLength - e.TxStart + 1
			e.TxEnd = r.referenceLength - e.TxEnd + 1
		}
	} else {
		r.forwardLength, r.backwardLength = forward, backward
	}

	// Every boundary is classified from its transcript position: positions
	// inside the first forwardLength bases are 5'UTR counted back from the
	// start codon, positions past the coding length are 3'UTR counted from the
	// stop codon, and the rest are numbered from the first coding base.
	for i := range r.Exons {
		e := &r.Exons[i]
		e.StartOffset = r.offsetAt(e.TxStart)
		e.EndOffset = r.offsetAt(e.TxEnd)
	}

	r.located = true
	return nil
}
