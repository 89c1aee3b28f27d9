// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search ranks stored CVs against a free-text job offer.
//
// A run splits the offer into skill, education and experience queries, then
// retrieves each category two ways at once:
//   - Semantic search over chunk embeddings of a rewritten query
//   - Weighted full-text rank over document text and metadata
//
// Best hits per document are blended evenly across the two strategies. The
// experience category is further blended with how well each candidate's
// estimated years fit the constraint parsed from the experience query.
// Categories are min-max normalized, weighted into one score, and the results
// are deduplicated by candidate identity.
package search
