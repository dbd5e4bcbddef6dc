// Command pgmquery is a CLI front end over the engine-level API: load a UAI
// model and evidence file, then run one of partition / marginals / query /
// m-separated / roots / leaves / order-width and print the result.
// partition, marginals and query also print how long the computation took.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/pgmgo/pgmgo/factor"
	"github.com/pgmgo/pgmgo/graph"
	"github.com/pgmgo/pgmgo/model"
	"github.com/pgmgo/pgmgo/uai"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pgmquery:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pgmquery", flag.ContinueOnError)
	modelPath := fs.String("model", "", "path to a UAI model file (required)")
	evidencePath := fs.String("evidence", "", "path to a UAI evidence file (optional)")
	op := fs.String("op", "partition", "partition | marginals | query | m-separated | roots | leaves | order-width")
	target := fs.String("target", "", "comma-separated variable ids: query target, or v1,v2 for m-separated")
	method := fs.String("method", "variable-elimination", "variable-elimination | logical-sampling | likelihood-weighting | gibbs-sampling")
	heuristic := fs.String("heuristic", "min-fill", "min-degree | min-fill | weighted-min-fill")
	marginalsMethod := fs.String("marginals-method", "variable-elimination", "variable-elimination | sum-product")
	bayesBall := fs.Bool("bayes-ball", false, "restrict factor set to requisite nodes before a query")
	seed := fs.Int64("seed", 1, "random seed for sampling methods")
	delta := fs.Float64("delta", 0, "sampling accuracy parameter (0 = method default)")
	epsilon := fs.Float64("epsilon", 0, "sampling/BP convergence parameter (0 = method default)")
	lp := fs.Float64("lp", 0, "rejection sampling lower-probability bound (0 = method default)")
	sampleCount := fs.Int("samples", 0, "override computed sample count (0 = use formula)")
	burnIn := fs.Int("burn-in", 100, "Gibbs sampling burn-in steps")
	gibbsSteps := fs.Int("gibbs-steps", 1000, "Gibbs sampling steps after burn-in")
	bpMaxIter := fs.Int("bp-max-iterations", 50, "loopy belief propagation max rounds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *modelPath == "" {
		return fmt.Errorf("-model is required")
	}

	modelFile, err := os.Open(*modelPath)
	if err != nil {
		return fmt.Errorf("opening model file: %w", err)
	}
	defer modelFile.Close()

	um, err := uai.LoadModel(modelFile)
	if err != nil {
		return err
	}

	evidence := map[int]int{}
	if *evidencePath != "" {
		evFile, err := os.Open(*evidencePath)
		if err != nil {
			return fmt.Errorf("opening evidence file: %w", err)
		}
		defer evFile.Close()
		evidence, err = uai.LoadEvidence(evFile, um.Reg)
		if err != nil {
			return err
		}
	}

	opts, err := parseOptions(*method, *heuristic, *marginalsMethod, *bayesBall, *delta, *epsilon, *lp, *sampleCount, *burnIn, *gibbsSteps, *bpMaxIter)
	if err != nil {
		return err
	}
	r := rand.New(rand.NewSource(*seed))

	switch *op {
	case "partition":
		return runPartition(um, evidence, opts, r)
	case "marginals":
		return runMarginals(um, evidence, opts)
	case "query":
		ids, err := parseIDs(*target)
		if err != nil {
			return err
		}
		return runQuery(um, ids, evidence, opts)
	case "m-separated":
		ids, err := parseIDs(*target)
		if err != nil {
			return err
		}
		if len(ids) != 2 {
			return fmt.Errorf("-target must name exactly two variable ids for m-separated, got %d", len(ids))
		}
		return runMSeparated(um, ids[0], ids[1], evidence)
	case "roots":
		return runRoots(um)
	case "leaves":
		return runLeaves(um)
	case "order-width":
		return runOrderWidth(um, *heuristic)
	default:
		return fmt.Errorf("unrecognized -op %q", *op)
	}
}

func parseIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("-target is required for this operation")
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid variable id %q: %w", p, err)
		}
		ids = append(ids, v)
	}
	return ids, nil
}

func parseOptions(method, heuristic, marginalsMethod string, bayesBall bool, delta, epsilon, lp float64, sampleCount, burnIn, gibbsSteps, bpMaxIter int) (model.QueryOptions, error) {
	opts := model.QueryOptions{
		BayesBall:       bayesBall,
		Delta:           delta,
		Epsilon:         epsilon,
		Lp:              lp,
		SampleCount:     sampleCount,
		BurnIn:          burnIn,
		GibbsSteps:      gibbsSteps,
		BPMaxIterations: bpMaxIter,
		BPEpsilon:       epsilon,
	}

	switch method {
	case "variable-elimination":
		opts.Method = model.VariableElimination
	case "logical-sampling":
		opts.Method = model.LogicalSampling
	case "likelihood-weighting":
		opts.Method = model.LikelihoodWeighting
	case "gibbs-sampling":
		opts.Method = model.GibbsSampling
	default:
		return opts, fmt.Errorf("unrecognized -method %q", method)
	}

	switch heuristic {
	case "min-degree":
		opts.Heuristic = model.MinDegree
	case "min-fill":
		opts.Heuristic = model.MinFill
	case "weighted-min-fill":
		opts.Heuristic = model.WeightedMinFill
	default:
		return opts, fmt.Errorf("unrecognized -heuristic %q", heuristic)
	}

	switch marginalsMethod {
	case "variable-elimination":
		opts.MarginalsMethod = model.MarginalsVE
	case "sum-product":
		opts.MarginalsMethod = model.MarginalsSumProduct
	default:
		return opts, fmt.Errorf("unrecognized -marginals-method %q", marginalsMethod)
	}

	return opts, nil
}

// asBayesNet builds a BayesNet when the loaded file declares a BAYES
// network; operations that only make sense for directed models (roots,
// leaves, m-separated) require this.
func asBayesNet(um *uai.Model) (*model.BayesNet, error) {
	if um.Kind != uai.Bayes {
		return nil, fmt.Errorf("this operation requires a BAYES model, got %s", um.Kind)
	}
	return model.NewBayesNet(um.Reg, um.Factors)
}

func runPartition(um *uai.Model, evidence map[int]int, opts model.QueryOptions, r *rand.Rand) error {
	timed, err := model.Time(func() (float64, error) {
		if um.Kind == uai.Bayes {
			bn, err := model.NewBayesNet(um.Reg, um.Factors)
			if err != nil {
				return 0, err
			}
			return bn.Partition(evidence, opts, r)
		}
		mn := model.NewMarkovNet(um.Reg, um.Factors)
		return mn.Partition(evidence), nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("partition = %.6g (%s)\n", timed.Value, timed.Elapsed)
	return nil
}

func runMarginals(um *uai.Model, evidence map[int]int, opts model.QueryOptions) error {
	timed, err := model.Time(func() (map[int]*factor.Factor, error) {
		if um.Kind == uai.Bayes {
			bn, err := model.NewBayesNet(um.Reg, um.Factors)
			if err != nil {
				return nil, err
			}
			return bn.Marginals(evidence, opts)
		}
		mn := model.NewMarkovNet(um.Reg, um.Factors)
		return mn.Marginals(evidence), nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("marginals (%s):\n", timed.Elapsed)
	for v, f := range timed.Value {
		fmt.Printf("variable %d:\n%s", v, f.String())
	}
	return nil
}

func runQuery(um *uai.Model, target []int, evidence map[int]int, opts model.QueryOptions) error {
	bn, err := asBayesNet(um)
	if err != nil {
		return err
	}
	timed, err := model.Time(func() (*factor.Factor, error) {
		return bn.Query(target, evidence, opts)
	})
	if err != nil {
		return err
	}
	fmt.Printf("query result (%s):\n%s", timed.Elapsed, timed.Value.String())
	return nil
}

func runMSeparated(um *uai.Model, v1, v2 int, evidence map[int]int) error {
	bn, err := asBayesNet(um)
	if err != nil {
		return err
	}
	fmt.Println(bn.MSeparated(v1, v2, evidence))
	return nil
}

func runRoots(um *uai.Model) error {
	bn, err := asBayesNet(um)
	if err != nil {
		return err
	}
	fmt.Println(bn.Roots())
	return nil
}

func runLeaves(um *uai.Model) error {
	bn, err := asBayesNet(um)
	if err != nil {
		return err
	}
	fmt.Println(bn.Leaves())
	return nil
}

func runOrderWidth(um *uai.Model, heuristicName string) error {
	var h graph.Heuristic
	switch heuristicName {
	case "min-degree":
		h = graph.MinDegree
	case "min-fill":
		h = graph.MinFill
	case "weighted-min-fill":
		h = graph.WeightedMinFill
	default:
		return fmt.Errorf("unrecognized -heuristic %q", heuristicName)
	}

	moral := graph.NewUndirectedGraph(um.Reg.Len())
	for _, f := range um.Factors {
		scope := f.Domain.Scope()
		for i := 0; i < len(scope); i++ {
			for j := i + 1; j < len(scope); j++ {
				moral.AddEdge(scope[i], scope[j])
			}
		}
	}
	order, width := graph.EliminationOrder(moral, h, um.Reg.Cardinality)
	fmt.Printf("width = %d, order = %v\n", width, order)
	return nil
}
