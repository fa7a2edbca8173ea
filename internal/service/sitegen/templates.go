package sitegen

import (
	"fmt"
	"strings"
)

// mentions reports whether the brief references a round-two feature keyword.
func mentions(brief, keyword string) bool {
	return strings.Contains(strings.ToLower(brief), strings.ToLower(keyword))
}

func captchaPage() string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Captcha Solver</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
    <script src="https://cdn.jsdelivr.net/npm/tesseract.js@4/dist/tesseract.min.js"></script>
</head>
<body>
    <div class="container mt-5">
        <h1>Captcha Solver</h1>
        <div class="card mt-4">
            <div class="card-body">
                <img id="captcha-image" class="img-fluid mb-3" alt="Captcha Image"/>
                <div class="spinner-border" id="loading" role="status">
                    <span class="visually-hidden">Loading...</span>
                </div>
                <div id="captcha-solution" class="alert alert-success" style="display:none;"></div>
            </div>
        </div>
    </div>
    <script>
        const urlParams = new URLSearchParams(window.location.search);
        const captchaUrl = urlParams.get('url') || './assets/sample.png';

        const imgEl = document.getElementById('captcha-image');
        const loadingEl = document.getElementById('loading');
        const solutionEl = document.getElementById('captcha-solution');

        imgEl.src = captchaUrl;

        const timeout = setTimeout(() => {
            solutionEl.textContent = 'Timeout: Unable to solve';
            solutionEl.style.display = 'block';
            loadingEl.style.display = 'none';
        }, 14000);

        Tesseract.recognize(
            captchaUrl,
            'eng',
            { logger: m => console.log(m) }
        ).then(result => {
            clearTimeout(timeout);
            const text = result.data.text;
            const cleaned = text.trim().replace(/[^a-zA-Z0-9]/g, '');
            solutionEl.textContent = cleaned || text.trim();
            solutionEl.style.display = 'block';
            loadingEl.style.display = 'none';
        }).catch(err => {
            clearTimeout(timeout);
            solutionEl.textContent = 'Error: ' + err.message;
            solutionEl.style.display = 'block';
            loadingEl.style.display = 'none';
        });
    </script>
</body>
</html>`
}

func salesPage(brief string, round int, seed string) string {
	hasTable := round >= 2 && mentions(brief, "table")
	hasCurrency := round >= 2 && mentions(brief, "currency")
	hasRegion := round >= 2 && mentions(brief, "region")

	regionFilter := ""
	if hasRegion {
		regionFilter = `<select id="region-filter" class="form-select mb-3"><option value="all">All Regions</option></select>`
	}
	currencyPicker := ""
	if hasCurrency {
		currencyPicker = `<select id="currency-picker" class="form-select mb-3"><option value="USD">USD</option><option value="EUR">EUR</option></select>`
	}
	currencyLabel := ""
	if hasCurrency {
		currencyLabel = ` (<span id="total-currency">USD</span>)`
	}
	productTable := ""
	if hasTable {
		productTable = `<table class="table mt-4" id="product-sales"><thead><tr><th>Product</th><th>Sales</th></tr></thead><tbody></tbody></table>`
	}
	accumulateProduct := ""
	if hasTable {
		accumulateProduct = `const product = values[productIdx]; productSales[product] = (productSales[product] || 0) + sale;`
	}
	populateTableCall := ""
	if hasTable {
		populateTableCall = `populateTable(productSales);`
	}
	currencyRead := `'USD'`
	if hasCurrency {
		currencyRead = `document.getElementById('currency-picker').value`
	}
	currencyUpdate := ""
	if hasCurrency {
		currencyUpdate = `document.getElementById('total-currency').textContent = currency;`
	}
	currencyListener := ""
	if hasCurrency {
		currencyListener = `document.getElementById('currency-picker').addEventListener('change', updateDisplay);`
	}
	populateTableFn := ""
	if hasTable {
		populateTableFn = `function populateTable(productSales) { const tbody = document.querySelector('#product-sales tbody'); Object.entries(productSales).forEach(([product, sales]) => { const row = tbody.insertRow(); row.insertCell(0).textContent = product; row.insertCell(1).textContent = sales.toFixed(2); }); }`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Sales Summary %[1]s</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body>
    <div class="container mt-5">
        <h1>Sales Summary %[1]s</h1>
        %[2]s
        %[3]s
        <div class="card">
            <div class="card-body">
                <h3>Total Sales%[4]s: <span id="total-sales">0</span></h3>
            </div>
        </div>
        %[5]s
    </div>
    <script>
        let salesData = {};
        const rates = { USD: 1, EUR: 0.85 };

        fetch('./assets/data.csv')
            .then(r => r.text())
            .then(csv => {
                const lines = csv.trim().split('\n');
                const headers = lines[0].split(',');
                const salesIdx = headers.indexOf('sales');
                const productIdx = headers.indexOf('product');

                let total = 0;
                const productSales = {};

                for (let i = 1; i < lines.length; i++) {
                    const values = lines[i].split(',');
                    const sale = parseFloat(values[salesIdx]);
                    total += sale;
                    %[6]s
                }

                salesData = { total: total, productSales: productSales };
                updateDisplay();
                %[7]s
            });

        function updateDisplay() {
            const currency = %[8]s;
            const rate = rates[currency] || 1;
            document.getElementById('total-sales').textContent = (salesData.total * rate).toFixed(2);
            %[9]s
        }

        %[10]s
        %[11]s
    </script>
</body>
</html>`, seed, regionFilter, currencyPicker, currencyLabel, productTable,
		accumulateProduct, populateTableCall, currencyRead, currencyUpdate,
		currencyListener, populateTableFn)
}

func markdownPage(brief string, round int) string {
	hasTabs := round >= 2 && mentions(brief, "tab")
	hasURLParam := round >= 2 && mentions(brief, "?url=")
	hasWordCount := round >= 2 && mentions(brief, "word count")

	tabButtons := ""
	if hasTabs {
		tabButtons = `<div class="btn-group mb-3" id="markdown-tabs"><button class="btn btn-primary" data-target="output">HTML</button><button class="btn btn-outline-primary" data-target="source">Markdown</button></div>`
	}
	sourceLabel := ""
	if hasURLParam {
		sourceLabel = `<div id="markdown-source-label" class="mb-2">Source: attachment</div>`
	}
	wordCountBadge := ""
	if hasWordCount {
		wordCountBadge = `<div id="markdown-word-count" class="badge bg-secondary mb-2">0 words</div>`
	}
	sourcePre := ""
	if hasTabs {
		sourcePre = `<pre id="markdown-source" class="border p-3" style="display:none;"></pre>`
	}
	sourceLabelUpdate := ""
	if hasURLParam {
		sourceLabelUpdate = `document.getElementById('markdown-source-label').textContent = 'Source: ' + mdUrl;`
	}
	sourceFill := ""
	if hasTabs {
		sourceFill = `document.getElementById('markdown-source').textContent = markdownText;`
	}
	wordCountCall := ""
	if hasWordCount {
		wordCountCall = `updateWordCount();`
	}
	wordCountFn := ""
	if hasWordCount {
		wordCountFn = `function updateWordCount() { const words = markdownText.split(/\s+/).filter(w => w.length > 0).length; const formatter = new Intl.NumberFormat('en-US'); document.getElementById('markdown-word-count').textContent = formatter.format(words) + ' words'; }`
	}
	tabsListener := ""
	if hasTabs {
		tabsListener = `document.getElementById('markdown-tabs').addEventListener('click', e => { if (e.target.tagName === 'BUTTON') { document.querySelectorAll('#markdown-tabs button').forEach(b => b.className = 'btn btn-outline-primary'); e.target.className = 'btn btn-primary'; const target = e.target.dataset.target; document.getElementById('markdown-output').style.display = target === 'output' ? 'block' : 'none'; document.getElementById('markdown-source').style.display = target === 'source' ? 'block' : 'none'; } });`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Markdown to HTML</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/gh/highlightjs/cdn-release@11.9.0/build/styles/default.min.css">
    <script src="https://cdn.jsdelivr.net/npm/marked/marked.min.js"></script>
    <script src="https://cdn.jsdelivr.net/gh/highlightjs/cdn-release@11.9.0/build/highlight.min.js"></script>
</head>
<body>
    <div class="container mt-5">
        <h1>Markdown to HTML Converter</h1>
        %s
        %s
        %s
        <div id="markdown-output" class="border p-3"></div>
        %s
    </div>
    <script>
        let markdownText = '';

        async function loadMarkdown() {
            const urlParams = new URLSearchParams(window.location.search);
            const mdUrl = urlParams.get('url');
            if (mdUrl) {
                %s
                const response = await fetch(mdUrl);
                markdownText = await response.text();
            } else {
                const response = await fetch('./assets/input.md');
                markdownText = await response.text();
            }
            renderMarkdown();
        }

        function renderMarkdown() {
            const html = marked.parse(markdownText);
            document.getElementById('markdown-output').innerHTML = html;
            %s
            hljs.highlightAll();
            %s
        }

        %s
        %s
        loadMarkdown();
    </script>
</body>
</html>`, tabButtons, sourceLabel, wordCountBadge, sourcePre,
		sourceLabelUpdate, sourceFill, wordCountCall, wordCountFn, tabsListener)
}

func githubUserPage(brief string, round int, seed string) string {
	hasStatus := round >= 2 && mentions(brief, "status")
	hasAge := round >= 2 && mentions(brief, "age")
	hasCache := round >= 2 && mentions(brief, "localStorage")

	statusBanner := ""
	if hasStatus {
		statusBanner = `<div id="github-status" aria-live="polite" class="alert alert-info">Ready</div>`
	}
	ageLine := ""
	if hasAge {
		ageLine = `<p><strong>Account Age:</strong> <span id="github-account-age"></span></p>`
	}
	cacheLoad := ""
	if hasCache {
		cacheLoad = `const cachedUser = localStorage.getItem('github-user-` + seed + `'); if (cachedUser) { const data = JSON.parse(cachedUser); usernameInput.value = data.username; }`
	}
	statusLooking := ""
	if hasStatus {
		statusLooking = `document.getElementById('github-status').textContent = 'Looking up user...';`
	}
	ageUpdate := ""
	if hasAge {
		ageUpdate = `const age = Math.floor((new Date() - createdDate) / (365.25 * 24 * 60 * 60 * 1000)); document.getElementById('github-account-age').textContent = age + ' years';`
	}
	cacheStore := ""
	if hasCache {
		cacheStore = `localStorage.setItem('github-user-` + seed + `', JSON.stringify({ username: username, created_at: formattedDate }));`
	}
	statusSuccess := ""
	if hasStatus {
		statusSuccess = `document.getElementById('github-status').textContent = 'Success!';`
	}
	statusFail := `alert('Failed: ' + data.message);`
	if hasStatus {
		statusFail = `document.getElementById('github-status').textContent = 'Failed: ' + data.message;`
	}
	statusError := `alert('Error: ' + err.message);`
	if hasStatus {
		statusError = `document.getElementById('github-status').textContent = 'Error: ' + err.message;`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>GitHub User Info</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body>
    <div class="container mt-5">
        <h1>GitHub User Info</h1>
        %[1]s
        <form id="github-user-%[2]s" class="mb-4">
            <div class="mb-3">
                <input type="text" id="username" class="form-control" placeholder="GitHub Username" required>
            </div>
            <button type="submit" class="btn btn-primary">Lookup</button>
        </form>
        <div id="results" style="display:none;">
            <p><strong>Created At:</strong> <span id="github-created-at"></span></p>
            %[3]s
        </div>
    </div>
    <script>
        const form = document.getElementById('github-user-%[2]s');
        const usernameInput = document.getElementById('username');
        %[4]s
        form.addEventListener('submit', async (e) => {
            e.preventDefault();
            const username = usernameInput.value;
            %[5]s
            try {
                const urlParams = new URLSearchParams(window.location.search);
                const token = urlParams.get('token');
                const headers = {};
                if (token) {
                    headers['Authorization'] = 'token ' + token;
                }
                const response = await fetch('https://api.github.com/users/' + username, { headers: headers });
                const data = await response.json();
                if (response.ok) {
                    const createdDate = new Date(data.created_at);
                    const formattedDate = createdDate.toISOString().split('T')[0];
                    document.getElementById('github-created-at').textContent = formattedDate;
                    %[6]s
                    %[7]s
                    document.getElementById('results').style.display = 'block';
                    %[8]s
                } else {
                    %[9]s
                }
            } catch (err) {
                %[10]s
            }
        });
    </script>
</body>
</html>`, statusBanner, seed, ageLine, cacheLoad, statusLooking,
		ageUpdate, cacheStore, statusSuccess, statusFail, statusError)
}

const genericFallbackPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Generic Application</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body>
    <div class="container mt-5">
        <h1>Generic Application</h1>
    </div>
</body>
</html>`
